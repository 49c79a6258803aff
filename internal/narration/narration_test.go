package narration_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"equalmedia/internal/narration"
)

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		text string
		rate float64
		want float64
	}{
		{"Hi", 0.06, 0.12},
		{"", 0.06, 0},
		{"héllo", 0, 0.30},
		{"ten chars!", 0.1, 1.0},
		{"ok 👍", 0.1, 0.5},
	}
	for _, tc := range tests {
		got := narration.EstimateDuration(tc.text, tc.rate)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("EstimateDuration(%q, %v) = %v, want %v", tc.text, tc.rate, got, tc.want)
		}
	}
}

func TestLabelAndSize(t *testing.T) {
	n := narration.AudioNarration{Audio: make([]byte, 2048), Duration: 0.12}
	if got := n.Label(); got != "Audio Narration (0.1s)" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := n.Size(); got != "2.0 kB" {
		t.Fatalf("unexpected size %q", got)
	}
	if n.WithoutAudio().Audio != nil {
		t.Fatal("expected audio stripped")
	}
	if len(n.Audio) != 2048 {
		t.Fatal("WithoutAudio must not mutate the receiver")
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	n := narration.AudioNarration{Audio: []byte("ID3"), MIMEType: narration.MIMEType}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	path, err := narration.Save(n, dir, "", now)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if want := filepath.Join(dir, "narration-20260102T030405Z.mp3"); path != want {
		t.Fatalf("unexpected path %q want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "ID3" {
		t.Fatalf("unexpected file contents %q (%v)", data, err)
	}

	explicit := filepath.Join(dir, "sub", "out.mp3")
	if got, err := narration.Save(n, "", explicit, now); err != nil || got != explicit {
		t.Fatalf("explicit save: %q %v", got, err)
	}

	if _, err := narration.Save(narration.AudioNarration{}, dir, "", now); err == nil {
		t.Fatal("expected error for empty audio")
	}
}
