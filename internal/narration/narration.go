package narration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/dustin/go-humanize"
)

// MIMEType is the content type of synthesized narration audio.
const MIMEType = "audio/mp3"

// DefaultSecondsPerCharacter calibrates EstimateDuration.
const DefaultSecondsPerCharacter = 0.06

// AudioNarration is a synthesized audio asset paired with the text it speaks.
// Duration is an estimate derived from the text, not measured from the audio.
type AudioNarration struct {
	Audio        []byte  `json:"audio,omitempty"`
	MIMEType     string  `json:"mimeType"`
	SourceText   string  `json:"sourceText"`
	Duration     float64 `json:"duration"`
	LanguageCode string  `json:"languageCode"`
}

// EstimateDuration returns characterCount × secondsPerCharacter, counting
// UTF-16 code units so characters outside the BMP count twice. A
// non-positive rate selects the default.
func EstimateDuration(text string, secondsPerCharacter float64) float64 {
	if secondsPerCharacter <= 0 {
		secondsPerCharacter = DefaultSecondsPerCharacter
	}
	units := 0
	for _, r := range text {
		units += utf16.RuneLen(r)
	}
	return float64(units) * secondsPerCharacter
}

// Label is the on-document caption for the narration indicator.
func (n AudioNarration) Label() string {
	return fmt.Sprintf("Audio Narration (%.1fs)", n.Duration)
}

// Size reports the audio size for humans, e.g. "12 kB".
func (n AudioNarration) Size() string {
	return humanize.Bytes(uint64(len(n.Audio)))
}

// WithoutAudio returns a copy with the audio bytes dropped, for logging and
// lightweight API responses.
func (n AudioNarration) WithoutAudio() AudioNarration {
	n.Audio = nil
	return n
}

// Save writes the audio into dir under a timestamped name, or to path
// directly when path is non-empty. It returns the written path.
func Save(n AudioNarration, dir, path string, now time.Time) (string, error) {
	if len(n.Audio) == 0 {
		return "", fmt.Errorf("save narration: no audio")
	}
	target := strings.TrimSpace(path)
	if target == "" {
		if strings.TrimSpace(dir) == "" {
			return "", fmt.Errorf("save narration: no output directory")
		}
		target = filepath.Join(dir, fmt.Sprintf("narration-%s.mp3", now.UTC().Format("20060102T150405Z")))
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create narration directory: %w", err)
	}
	if err := os.WriteFile(target, n.Audio, 0o644); err != nil {
		return "", fmt.Errorf("write narration: %w", err)
	}
	return target, nil
}
