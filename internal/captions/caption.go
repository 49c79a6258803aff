package captions

import (
	"fmt"
	"math"
)

// Caption is one contiguous transcript span. Times are seconds from the start
// of the audio and EndTime is never before StartTime.
type Caption struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// Duration returns the span length in seconds.
func (c Caption) Duration() float64 {
	return c.EndTime - c.StartTime
}

// Label renders the on-document text for a caption: "[m:ss-m:ss] text".
func (c Caption) Label() string {
	return fmt.Sprintf("[%s-%s] %s", FormatClock(c.StartTime), FormatClock(c.EndTime), c.Text)
}

// Segment accumulates one recognition result before it becomes a Caption.
type Segment struct {
	Text      string
	StartTime float64
	EndTime   float64
}

// Caption converts the accumulated segment.
func (s Segment) Caption() Caption {
	return Caption{Text: s.Text, StartTime: s.StartTime, EndTime: s.EndTime}
}

// FormatClock renders seconds as m:ss with unpadded minutes. Negative and
// non-finite values render as 0:00.
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	minutes := int(math.Floor(seconds / 60))
	secs := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// Span returns the earliest start and latest end across caps.
func Span(caps []Caption) (float64, float64) {
	if len(caps) == 0 {
		return 0, 0
	}
	start, end := caps[0].StartTime, caps[0].EndTime
	for _, c := range caps[1:] {
		start = math.Min(start, c.StartTime)
		end = math.Max(end, c.EndTime)
	}
	return start, end
}
