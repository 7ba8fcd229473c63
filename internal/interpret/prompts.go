package interpret

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are an expert in reading facial micro-expressions and body language. " +
	"Given a set of detected gestures, describe the emotional state they most " +
	"likely indicate. Be specific and grounded in the observations; note when " +
	"signals conflict. Keep the reading under 150 words."

// buildPrompt renders the user message for a single-snapshot request.
func buildPrompt(req *Request) string {
	var b strings.Builder

	switch req.Mode {
	case ModeBody:
		b.WriteString("Detected body-language patterns: ")
	case ModeCombined:
		b.WriteString("Detected facial expressions and body-language patterns: ")
	default:
		b.WriteString("Detected facial expressions: ")
	}
	b.WriteString(strings.Join(req.Gestures, ", "))
	b.WriteString(".")

	if req.Context != "" {
		b.WriteString(" Context: ")
		b.WriteString(req.Context)
	}

	b.WriteString(" What emotional state do these suggest?")
	return b.String()
}

// buildTimelinePrompt renders the user message for a whole-session
// pattern analysis.
func buildTimelinePrompt(moments []Moment) string {
	var b strings.Builder
	b.WriteString("The following expression timeline was observed, in order:\n")

	for _, m := range moments {
		gestures := "neutral"
		if len(m.Gestures) > 0 {
			gestures = strings.Join(m.Gestures, ", ")
		}
		fmt.Fprintf(&b, "- at %.1fs: %s\n", m.Offset, gestures)
	}

	b.WriteString("Describe the emotional arc across this timeline: how the state " +
		"evolved, any recurring patterns, and the overall mood.")
	return b.String()
}

// truncateWords clamps s to at most max words. Zero or negative max
// disables the clamp.
func truncateWords(s string, max int) string {
	if max <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) <= max {
		return s
	}
	return strings.Join(words[:max], " ")
}
