package ingestion

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ReferenceEpoch is the zero point for every timestamp derived from an upload.
var ReferenceEpoch = time.Date(2025, time.August, 6, 0, 0, 0, 0, time.UTC)

// fallbackStep spaces synthetic timestamps so row order survives.
const fallbackStep = 100 * time.Millisecond

// maxOffsetSeconds keeps offsets inside time.Duration range.
const maxOffsetSeconds = float64(math.MaxInt64/int64(time.Second)) - 1

// Grammar names the rule that produced a timestamp.
type Grammar string

const (
	GrammarNumeric    Grammar = "numeric"
	GrammarStructured Grammar = "structured"
	GrammarFallback   Grammar = "fallback"
)

type timestampGrammar struct {
	name  Grammar
	parse func(raw string) (time.Duration, bool)
}

// Normalizer turns timestamp cells into absolute times. Grammars are tried
// in order; the row-index fallback always succeeds.
type Normalizer struct {
	epoch    time.Time
	grammars []timestampGrammar
}

func NewNormalizer(epoch time.Time) *Normalizer {
	return &Normalizer{
		epoch: epoch,
		grammars: []timestampGrammar{
			{name: GrammarNumeric, parse: parseSecondsOffset},
			{name: GrammarStructured, parse: parseDayClock},
		},
	}
}

// Epoch returns the reference epoch offsets are added to.
func (n *Normalizer) Epoch() time.Time {
	return n.epoch
}

// Normalize resolves raw for the given 1-based data row. It never fails.
func (n *Normalizer) Normalize(raw string, rowIndex int) time.Time {
	ts, _ := n.NormalizeWithGrammar(raw, rowIndex)
	return ts
}

// NormalizeWithGrammar is Normalize plus the grammar that matched.
func (n *Normalizer) NormalizeWithGrammar(raw string, rowIndex int) (time.Time, Grammar) {
	raw = strings.TrimSpace(raw)
	for _, g := range n.grammars {
		if offset, ok := g.parse(raw); ok {
			return n.epoch.Add(offset), g.name
		}
	}
	return n.epoch.Add(time.Duration(rowIndex) * fallbackStep), GrammarFallback
}

// isParseable reports whether raw matches a real (non-fallback) grammar.
func (n *Normalizer) isParseable(raw string) bool {
	raw = strings.TrimSpace(raw)
	for _, g := range n.grammars {
		if _, ok := g.parse(raw); ok {
			return true
		}
	}
	return false
}

// parseSecondsOffset reads a float number of seconds, e.g. "12.25".
func parseSecondsOffset(raw string) (time.Duration, bool) {
	if raw == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || math.Abs(secs) > maxOffsetSeconds {
		return 0, false
	}
	return time.Duration(math.Round(secs * float64(time.Second))), true
}

// parseDayClock reads D:H:M:S[.mmm], e.g. "1:02:03:04.500". The suffix
// after the dot is an integer count of milliseconds.
func parseDayClock(raw string) (time.Duration, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) != 4 {
		return 0, false
	}

	day, ok := atoi(parts[0])
	if !ok {
		return 0, false
	}
	hour, ok := atoi(parts[1])
	if !ok {
		return 0, false
	}
	minute, ok := atoi(parts[2])
	if !ok {
		return 0, false
	}

	secParts := strings.Split(parts[3], ".")
	if len(secParts) > 2 {
		return 0, false
	}
	second, ok := atoi(secParts[0])
	if !ok {
		return 0, false
	}
	var millis int64
	if len(secParts) == 2 {
		if millis, ok = atoi(secParts[1]); !ok {
			return 0, false
		}
	}

	// Every term stays within a fifth of the range so partial sums cannot overflow.
	terms := []float64{float64(day) * 86400, float64(hour) * 3600, float64(minute) * 60, float64(second), float64(millis) / 1000}
	for _, term := range terms {
		if math.Abs(term) > maxOffsetSeconds/5 {
			return 0, false
		}
	}

	return time.Duration(day)*24*time.Hour +
		time.Duration(hour)*time.Hour +
		time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second +
		time.Duration(millis)*time.Millisecond, true
}

func atoi(s string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
