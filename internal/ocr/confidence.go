package ocr

import (
	"regexp"
	"strings"
)

// signal is a pattern whose presence raises the confidence that extracted
// text is a real calendar or timetable rather than OCR noise.
type signal struct {
	re     *regexp.Regexp
	weight float32
}

var signals = []signal{
	{regexp.MustCompile(`\b\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{4}\b|\b\d{4}-\d{2}-\d{2}\b`), 0.25},
	{regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday)\b`), 0.2},
	{regexp.MustCompile(`\b\d{1,2}:\d{2}\b`), 0.15},
}

const baseConfidence = 0.2

func heuristicConfidence(txt string) float32 {
	if strings.TrimSpace(txt) == "" {
		return 0
	}
	lower := strings.ToLower(txt)
	score := float32(baseConfidence)
	for _, s := range signals {
		if s.re.MatchString(lower) {
			score += s.weight
		}
	}
	if len(txt) > MinTextLayerChars {
		score += 0.1
	}
	return min(score, 1)
}
