package meeting

import (
	"fmt"
	"strings"
)

// NoTranscriptSummary is returned for an empty or blank transcript.
const NoTranscriptSummary = "No transcript available for summary."

// Summarizer produces summary text for a finished meeting.
type Summarizer interface {
	Summarize(transcript, durationLabel, title string) string
}

// TemplateSummarizer is the deterministic Summarizer backed by GenerateSummary.
type TemplateSummarizer struct{}

// Summarize implements Summarizer.
func (TemplateSummarizer) Summarize(transcript, durationLabel, title string) string {
	return GenerateSummary(transcript, durationLabel, title)
}

// GenerateSummary fills a fixed template with the title, duration label,
// word count and sentence count. It is pure: equal input gives equal output.
func GenerateSummary(transcript, durationLabel, title string) string {
	if strings.TrimSpace(transcript) == "" {
		return NoTranscriptSummary
	}
	return fmt.Sprintf(
		"Meeting \"%s\" recorded for %s. Key discussion captured with %d words across %d sentences. "+
			"The transcript shows good engagement and clear communication throughout the session.",
		title, durationLabel, WordCount(transcript), SentenceCount(transcript),
	)
}
