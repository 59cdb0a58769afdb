package meeting

import (
	"fmt"
	"math"
	"strings"
)

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// SentenceCount returns the number of non-blank pieces of text split on '.'.
func SentenceCount(text string) int {
	n := 0
	for _, s := range strings.Split(text, ".") {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

// UniqueWords returns the number of distinct words, compared case-insensitively.
func UniqueWords(text string) int {
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		seen[strings.ToLower(w)] = struct{}{}
	}
	return len(seen)
}

// WordsPerMinute returns the rounded speaking rate, or 0 when seconds is not positive.
func WordsPerMinute(words, seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return int(math.Round(float64(words) / (float64(seconds) / 60)))
}

// FormatDuration renders seconds as MM:SS. Minutes are not wrapped at 60.
// Negative input is treated as zero.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
