package captions

import (
	"fmt"
	"strconv"
	"strings"
)

// RecognizeResponse mirrors the speech:recognize response body.
type RecognizeResponse struct {
	Results []RecognitionResult `json:"results"`
}

// RecognitionResult is one sequential portion of the transcribed audio.
type RecognitionResult struct {
	Alternatives  []Alternative `json:"alternatives"`
	ResultEndTime string        `json:"resultEndTime,omitempty"`
	LanguageCode  string        `json:"languageCode,omitempty"`
}

// Alternative is one recognition hypothesis; only the first is used.
type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence,omitempty"`
	Words      []Word  `json:"words,omitempty"`
}

// Word carries per-word timing as protobuf duration strings such as "1.500s".
type Word struct {
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Word      string `json:"word"`
}

// ParseOffset converts a protobuf duration string into seconds. An empty
// offset is zero.
func ParseOffset(value string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(value), "s")
	if trimmed == "" {
		return 0, nil
	}
	seconds, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("parse time offset %q: %w", value, err)
	}
	return seconds, nil
}
