// Package prompt turns a style profile, presets and retrieved context into
// system prompts, and decides when a writing request needs a clarifying
// question first.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kakuhq/kaku/internal/style"
)

// Options are the inputs of SystemPrompt.
type Options struct {
	Profile style.Profile
	Style   StylePreset
	Purpose PurposePreset
	// Context is retrieved corpus text, appended verbatim.
	Context string
}

const assistantIntro = "You are Kaku, a writing assistant that writes in the user's personal style."

const genericStyle = `The user has not uploaded any writing samples yet, so you do not know their style.
Write in a natural, conversational tone. When it fits, suggest that the user uploads a few samples
of their own writing so future drafts can sound like them.`

const responseFormat = `Reply with a JSON object with these fields:
- "message": your reply to the user.
- "title": a short title for the conversation.
- "draftContent": when you produced a complete document, an object {"title", "content"} holding it; omit otherwise.
- "suggestions": up to three short follow-up requests the user might make.`

// FormalityLabel describes a 0-10 formality score in words.
func FormalityLabel(score float64) string {
	switch {
	case score >= 8:
		return "very formal"
	case score >= 6:
		return "formal"
	case score >= 4:
		return "balanced between formal and casual"
	case score >= 2:
		return "casual"
	default:
		return "very casual"
	}
}

// SentenceLengthLabel describes an average sentence length in words.
func SentenceLengthLabel(words float64) string {
	switch {
	case words > 25:
		return "long and complex"
	case words > 15:
		return "moderate in length"
	default:
		return "short and direct"
	}
}

// ParagraphLengthLabel describes an average paragraph length in words.
func ParagraphLengthLabel(words float64) string {
	switch {
	case words > 100:
		return "extended"
	case words > 50:
		return "moderate in length"
	default:
		return "concise"
	}
}

// SystemPrompt assembles the system prompt for one reply.
func SystemPrompt(o Options) string {
	var b strings.Builder
	b.WriteString(assistantIntro)
	b.WriteString("\n\n")

	if o.Profile.HasDocuments {
		writeMeasuredStyle(&b, o.Profile)
	} else {
		b.WriteString(genericStyle)
		b.WriteString("\n\n")
	}

	stylePreset := ParseStyle(string(o.Style))
	purpose := ParsePurpose(string(o.Purpose))
	b.WriteString("## Requested style (overrides the measured style where they conflict)\n")
	fmt.Fprintf(&b, "%s: %s\n\n", stylePreset, styleDirectives[stylePreset])
	b.WriteString("## Purpose\n")
	fmt.Fprintf(&b, "%s: %s\n\n", purpose, purposeDirectives[purpose])

	if ctx := strings.TrimSpace(o.Context); ctx != "" {
		b.WriteString("## Relevant excerpts from the user's writing\n")
		b.WriteString("Use these excerpts to ground facts and mirror phrasing. Do not quote them unless asked.\n\n")
		b.WriteString(o.Context)
		b.WriteString("\n\n")
	}

	b.WriteString(responseFormat)
	return b.String()
}

func writeMeasuredStyle(b *strings.Builder, p style.Profile) {
	b.WriteString("## The user's writing style\n")
	fmt.Fprintf(b, "- Tone: %s.\n", FormalityLabel(p.FormalityScore))
	fmt.Fprintf(b, "- Sentences: %s.\n", SentenceLengthLabel(p.AverageSentenceLength))
	fmt.Fprintf(b, "- Paragraphs: %s.\n", ParagraphLengthLabel(p.AverageParagraphLength))
	if len(p.CommonComplexWords) > 0 {
		fmt.Fprintf(b, "- Vocabulary they reach for: %s.\n", strings.Join(p.CommonComplexWords, ", "))
	}
	if len(p.CommonTransitions) > 0 {
		fmt.Fprintf(b, "- Transitions they use: %s.\n", strings.Join(p.CommonTransitions, ", "))
	}
	if p.SampleText != "" {
		b.WriteString("\nA sample of their writing:\n\"\"\"\n")
		b.WriteString(p.SampleText)
		b.WriteString("\n\"\"\"\n")
	}
	b.WriteString("\n")
}
