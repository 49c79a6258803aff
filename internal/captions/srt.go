package captions

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteSRT writes caps as numbered SubRip cues. Captions with blank text are skipped.
func WriteSRT(w io.Writer, caps []Caption) error {
	bw := bufio.NewWriter(w)
	index := 1
	for _, c := range caps {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", index, formatSRTTimestamp(c.StartTime), formatSRTTimestamp(c.EndTime), text); err != nil {
			return fmt.Errorf("write srt cue %d: %w", index, err)
		}
		index++
	}
	return bw.Flush()
}

// ReadSRT parses SubRip cues into captions. Multi-line cue text is joined with
// single spaces.
func ReadSRT(r io.Reader) ([]Caption, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	content := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	content = strings.TrimPrefix(content, "\ufeff")
	if content == "" {
		return nil, nil
	}

	var out []Caption
	for n, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		timingIdx := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timingIdx = i
				break
			}
		}
		if timingIdx < 0 {
			continue
		}
		parts := strings.SplitN(lines[timingIdx], "-->", 2)
		start, err := parseSRTTimestamp(parts[0])
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", n+1, err)
		}
		end, err := parseSRTTimestamp(parts[1])
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", n+1, err)
		}
		text := strings.Join(lines[timingIdx+1:], " ")
		out = append(out, Caption{Text: strings.TrimSpace(text), StartTime: start, EndTime: end})
	}
	return out, nil
}

func formatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	msTotal := int(seconds*1000 + 0.5)
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, msTotal/1_000, msTotal%1_000)
}

func parseSRTTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	// Some writers append cue settings after the timestamp.
	if idx := strings.IndexByte(value, ' '); idx > 0 {
		value = value[:idx]
	}
	value = strings.ReplaceAll(value, ".", ",")
	main, fraction, ok := strings.Cut(value, ",")
	if !ok {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(main, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	secs, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(fraction)
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+secs) + float64(millis)/1000, nil
}
