package captions

import (
	"fmt"
	"strings"
)

// DefaultFallbackWindow is the span, in seconds, given to a transcript that
// arrives without word timings.
const DefaultFallbackWindow = 5.0

// Builder turns recognition results into captions.
type Builder struct {
	FallbackWindow float64
}

// NewBuilder returns a Builder; a non-positive window selects DefaultFallbackWindow.
func NewBuilder(fallbackWindow float64) Builder {
	if fallbackWindow <= 0 {
		fallbackWindow = DefaultFallbackWindow
	}
	return Builder{FallbackWindow: fallbackWindow}
}

// Build converts each result into at most one caption, in order.
//
// A result whose first alternative has words spans from the first word's start
// to the last word's end. A transcript without words gets a window ending at
// resultEndTime, or [0, window] when that is absent. Anything else is dropped.
func (b Builder) Build(results []RecognitionResult) ([]Caption, error) {
	window := b.FallbackWindow
	if window <= 0 {
		window = DefaultFallbackWindow
	}

	out := make([]Caption, 0, len(results))
	for i, result := range results {
		segment, ok, err := buildSegment(result, window)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		if ok {
			out = append(out, segment.Caption())
		}
	}
	return out, nil
}

func buildSegment(result RecognitionResult, window float64) (Segment, bool, error) {
	if len(result.Alternatives) == 0 {
		return Segment{}, false, nil
	}
	alt := result.Alternatives[0]

	if len(alt.Words) > 0 {
		texts := make([]string, 0, len(alt.Words))
		for _, w := range alt.Words {
			texts = append(texts, w.Word)
		}
		start, err := ParseOffset(alt.Words[0].StartTime)
		if err != nil {
			return Segment{}, false, err
		}
		end, err := ParseOffset(alt.Words[len(alt.Words)-1].EndTime)
		if err != nil {
			return Segment{}, false, err
		}
		return Segment{
			Text:      strings.TrimSpace(strings.Join(texts, " ")),
			StartTime: start,
			EndTime:   end,
		}, true, nil
	}

	if alt.Transcript == "" {
		return Segment{}, false, nil
	}
	end := window
	if strings.TrimSpace(result.ResultEndTime) != "" {
		parsed, err := ParseOffset(result.ResultEndTime)
		if err != nil {
			return Segment{}, false, err
		}
		end = parsed
	}
	return Segment{
		Text:      alt.Transcript,
		StartTime: end - window,
		EndTime:   end,
	}, true, nil
}
