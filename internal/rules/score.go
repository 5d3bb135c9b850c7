package rules

import (
	"regexp"
	"strconv"
)

// DefaultVisionScore is assumed when a vision response carries no
// recognizable numeric score.
const DefaultVisionScore = 75

// Ordered from most to least explicit; the first match wins.
var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)score[:\s]+(\d+)`),
	regexp.MustCompile(`(?i)(\d+)/100`),
	regexp.MustCompile(`(?i)(\d+)%`),
	regexp.MustCompile(`(?i)(\d+)\s*out\s*of\s*100`),
}

// ExtractScore pulls a 0-100 score out of free-form model prose. The
// model is asked for "a score from 0-100" but phrases it unpredictably
// ("Score: 85", "85/100", "85%", "85 out of 100").
func ExtractScore(text string) int {
	for _, pattern := range scorePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if n > 100 {
			return 100
		}
		if n < 0 {
			return 0
		}
		return n
	}
	return DefaultVisionScore
}
