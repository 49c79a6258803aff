package captions_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"equalmedia/internal/captions"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0:00"},
		{5.9, "0:05"},
		{59.99, "0:59"},
		{60, "1:00"},
		{125.4, "2:05"},
		{3600, "60:00"},
		{-3, "0:00"},
		{math.NaN(), "0:00"},
	}
	for _, tc := range tests {
		if got := captions.FormatClock(tc.input); got != tc.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCaptionLabel(t *testing.T) {
	c := captions.Caption{Text: "Hello world", StartTime: 65, EndTime: 70.2}
	if got := c.Label(); got != "[1:05-1:10] Hello world" {
		t.Fatalf("unexpected label %q", got)
	}
	if c.Duration() < 5.19 || c.Duration() > 5.21 {
		t.Fatalf("unexpected duration %v", c.Duration())
	}
}

func TestSpan(t *testing.T) {
	start, end := captions.Span([]captions.Caption{
		{StartTime: 4, EndTime: 6},
		{StartTime: 1, EndTime: 2},
		{StartTime: 7, EndTime: 9.5},
	})
	if start != 1 || end != 9.5 {
		t.Fatalf("unexpected span %v-%v", start, end)
	}
	if s, e := captions.Span(nil); s != 0 || e != 0 {
		t.Fatalf("empty span should be zero, got %v-%v", s, e)
	}
}

func TestWriteAndReadSRT(t *testing.T) {
	caps := []captions.Caption{
		{Text: "Hello world !", StartTime: 0, EndTime: 1},
		{Text: "   ", StartTime: 1, EndTime: 2},
		{Text: "Second line", StartTime: 61.25, EndTime: 3725.5},
	}
	var buf bytes.Buffer
	if err := captions.WriteSRT(&buf, caps); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\nHello world !\n\n" +
		"2\n00:01:01,250 --> 01:02:05,500\nSecond line\n\n"
	if buf.String() != want {
		t.Fatalf("unexpected srt:\n%s", buf.String())
	}

	parsed, err := captions.ReadSRT(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadSRT: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 cues, got %+v", parsed)
	}
	if parsed[1] != (captions.Caption{Text: "Second line", StartTime: 61.25, EndTime: 3725.5}) {
		t.Fatalf("unexpected cue: %+v", parsed[1])
	}
}

func TestReadSRTJoinsLinesAndRejectsBadTimes(t *testing.T) {
	input := "\ufeff1\r\n00:00:02.500 --> 00:00:04,000 align:start\r\nfirst\r\nsecond\r\n"
	parsed, err := captions.ReadSRT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadSRT: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Text != "first second" || parsed[0].StartTime != 2.5 || parsed[0].EndTime != 4 {
		t.Fatalf("unexpected cues: %+v", parsed)
	}

	if _, err := captions.ReadSRT(strings.NewReader("1\n00:00 --> 00:01\nbad\n")); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}
