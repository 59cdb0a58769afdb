// Package transcribe provides transcript sources for recording sessions:
// line input, an external recognizer command, a simulated fallback, and
// chunked capture with asynchronous mock transcription.
package transcribe

// SimulatedSegments are the demo fragments played by Simulated.
var SimulatedSegments = []string{
	"Welcome everyone to today's meeting.",
	"Let's start by reviewing our quarterly goals and objectives.",
	"Our team has made significant progress on the user interface improvements.",
	"The analytics show a 25% increase in user engagement this month.",
	"We should focus on customer feedback and iterate on our features.",
}

// MockTranscripts are the sentences MockTranscriber picks from.
var MockTranscripts = []string{
	"Welcome everyone to today's meeting. Let's start by reviewing our quarterly goals and progress.",
	"I think we should focus on improving our customer satisfaction scores this quarter.",
	"The new feature rollout went well last week. We received positive feedback from users.",
	"Let's schedule a follow-up meeting to discuss the implementation details.",
	"Does anyone have questions about the project timeline? We need to meet our deadline.",
	"Our team has been working hard on the new user interface improvements.",
	"The analytics show that user engagement has increased by 25% this month.",
	"We should consider expanding our mobile app features based on user feedback.",
}
