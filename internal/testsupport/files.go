package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WAVHeader returns a minimal 44-byte PCM WAV header followed by n zero
// samples, enough for MIME sniffing and upload tests.
func WAVHeader(n int) []byte {
	data := make([]byte, 44+n)
	copy(data[0:], "RIFF")
	copy(data[8:], "WAVE")
	copy(data[12:], "fmt ")
	copy(data[36:], "data")
	return data
}
