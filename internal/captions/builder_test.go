package captions_test

import (
	"strings"
	"testing"

	"equalmedia/internal/captions"
)

func word(text, start, end string) captions.Word {
	return captions.Word{Word: text, StartTime: start, EndTime: end}
}

func TestBuildUsesWordTimings(t *testing.T) {
	results := []captions.RecognitionResult{
		{Alternatives: []captions.Alternative{{
			Transcript: "Hello world!",
			Words: []captions.Word{
				word("Hello", "0s", "0.400s"),
				word("world", "0.400s", "0.900s"),
				word("!", "0.900s", "1s"),
			},
		}}},
	}

	got, err := captions.NewBuilder(0).Build(results)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	want := []captions.Caption{{Text: "Hello world !", StartTime: 0, EndTime: 1.0}}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("unexpected captions: %+v", got)
	}
}

func TestBuildOneCaptionPerTimedResult(t *testing.T) {
	results := []captions.RecognitionResult{
		{Alternatives: []captions.Alternative{{Words: []captions.Word{word("one", "1.5s", "2s"), word("two", "2s", "2.25s")}}}},
		{Alternatives: []captions.Alternative{{Words: []captions.Word{word(" three ", "3s", "4.125s")}}}},
		{Alternatives: []captions.Alternative{{Words: []captions.Word{word("four", "", "5s")}}}},
	}
	got, err := captions.NewBuilder(5).Build(results)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(got) != len(results) {
		t.Fatalf("expected %d captions, got %d", len(results), len(got))
	}
	expect := []captions.Caption{
		{Text: "one two", StartTime: 1.5, EndTime: 2.25},
		{Text: "three", StartTime: 3, EndTime: 4.125},
		{Text: "four", StartTime: 0, EndTime: 5},
	}
	for i := range expect {
		if got[i] != expect[i] {
			t.Errorf("caption %d = %+v, want %+v", i, got[i], expect[i])
		}
	}
}

func TestBuildTranscriptFallback(t *testing.T) {
	tests := []struct {
		name   string
		window float64
		result captions.RecognitionResult
		want   captions.Caption
	}{
		{
			name:   "no end time",
			result: captions.RecognitionResult{Alternatives: []captions.Alternative{{Transcript: "hi there"}}},
			want:   captions.Caption{Text: "hi there", StartTime: 0, EndTime: 5},
		},
		{
			name:   "with end time",
			result: captions.RecognitionResult{ResultEndTime: "12.5s", Alternatives: []captions.Alternative{{Transcript: "later"}}},
			want:   captions.Caption{Text: "later", StartTime: 7.5, EndTime: 12.5},
		},
		{
			name:   "custom window",
			window: 2,
			result: captions.RecognitionResult{ResultEndTime: "10s", Alternatives: []captions.Alternative{{Transcript: "short"}}},
			want:   captions.Caption{Text: "short", StartTime: 8, EndTime: 10},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := captions.NewBuilder(tc.window).Build([]captions.RecognitionResult{tc.result})
			if err != nil {
				t.Fatalf("Build returned error: %v", err)
			}
			if len(got) != 1 || got[0] != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestBuildDropsEmptyResults(t *testing.T) {
	results := []captions.RecognitionResult{
		{},
		{Alternatives: []captions.Alternative{{}}},
		{Alternatives: []captions.Alternative{{Transcript: "kept"}}},
	}
	got, err := captions.Builder{}.Build(results)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(got) != 1 || got[0].Text != "kept" {
		t.Fatalf("expected only the transcript result, got %+v", got)
	}
}

func TestBuildRejectsMalformedOffset(t *testing.T) {
	results := []captions.RecognitionResult{
		{Alternatives: []captions.Alternative{{Words: []captions.Word{word("bad", "abc", "1s")}}}},
	}
	_, err := captions.NewBuilder(5).Build(results)
	if err == nil || !strings.Contains(err.Error(), "result 0") {
		t.Fatalf("expected offset error naming the result, got %v", err)
	}
}

func TestParseOffset(t *testing.T) {
	tests := map[string]float64{
		"":        0,
		"0s":      0,
		"1.500s":  1.5,
		" 2s ":    2,
		"3.25":    3.25,
		"120.04s": 120.04,
	}
	for input, want := range tests {
		got, err := captions.ParseOffset(input)
		if err != nil {
			t.Fatalf("ParseOffset(%q) error: %v", input, err)
		}
		if got != want {
			t.Errorf("ParseOffset(%q) = %v, want %v", input, got, want)
		}
	}
}
