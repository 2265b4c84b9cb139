// Package transcript converts raw timestamped transcript text into the
// ordered segment list the pipeline operates on.
package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"transcript-insights-go/internal/types"
)

// lines like "[00:12:05] Alice: we should ship this" or "[12:05] Alice: ..."
var lineRe = regexp.MustCompile(`^\[(\d{1,2}:)?(\d{1,2}):(\d{2})\]\s*(?:([^:]+):\s*)?(.*)$`)

// fallbackGapSec is the assumed spacing between lines that carry no timestamp.
const fallbackGapSec = 5.0

// Parse splits raw transcript text into ordered segments with stable ids.
// Accepted line shapes, in order of preference:
//
//	[HH:MM:SS] Speaker: text
//	[MM:SS] Speaker: text
//	Speaker: text
//	text
//
// Lines without timestamps get synthetic, monotonically increasing starts so
// ordering invariants still hold.
func Parse(raw string) []types.Segment {
	var segs []types.Segment
	cursor := 0.0

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		speaker := ""
		text := line
		start := cursor

		if m := lineRe.FindStringSubmatch(line); m != nil {
			hours := 0.0
			if m[1] != "" {
				hours, _ = strconv.ParseFloat(strings.TrimSuffix(m[1], ":"), 64)
			}
			mins, _ := strconv.ParseFloat(m[2], 64)
			secs, _ := strconv.ParseFloat(m[3], 64)
			start = hours*3600 + mins*60 + secs
			speaker = strings.TrimSpace(m[4])
			text = strings.TrimSpace(m[5])
		} else if i := strings.Index(line, ":"); i > 0 && i < 40 && !strings.ContainsAny(line[:i], ".!?") {
			speaker = strings.TrimSpace(line[:i])
			text = strings.TrimSpace(line[i+1:])
		}
		if text == "" {
			continue
		}
		if start < cursor {
			start = cursor
		}

		segs = append(segs, types.Segment{
			ID:      fmt.Sprintf("seg-%03d", len(segs)+1),
			Speaker: speaker,
			Start:   start,
			Text:    text,
		})
		cursor = start + fallbackGapSec
	}

	// close each segment at the next one's start
	for i := range segs {
		if i+1 < len(segs) {
			segs[i].End = segs[i+1].Start
		} else {
			segs[i].End = segs[i].Start + fallbackGapSec
		}
	}
	return segs
}

// Flatten renders segments back to plain text, one line per segment.
func Flatten(segs []types.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Speaker != "" {
			b.WriteString(s.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(s.Text)
		b.WriteString("\n")
	}
	return b.String()
}
