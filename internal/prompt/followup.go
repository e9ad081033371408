package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// Turn is one message of the transcript the gate inspects.
type Turn struct {
	Role    string
	Content string
}

const roleAssistant = "assistant"

// detailLength is the message length above which a request counts as detailed.
const detailLength = 100

var (
	creationVerb = regexp.MustCompile(`(?i)\b(write|create|draft|compose|generate|prepare)\b|\bhelp me\b`)
	contentNoun  = regexp.MustCompile(`(?i)\b(e-?mails?|letters?|essays?|articles?|blog posts?|blogs?|reports?|stor(?:y|ies)|poems?|speech(?:es)?|proposals?|memos?|newsletters?|posts?|cover letters?|bios?|captions?|summar(?:y|ies)|scripts?|reviews?|announcements?|messages?|notes?)\b`)
	detailWords  = regexp.MustCompile(`(?i)\b(include|including|mention|mentioning|focus on|focusing on|about|regarding|covering|highlight|highlighting|explain|explaining|emphasi[sz]e)\b`)
	clauseBreak  = regexp.MustCompile(`[,;:]|\b(because|so that|which|while|although)\b`)
)

// contentType is a kind of writing that always gets its own clarifying
// question the first time it comes up.
type contentType struct {
	name      string
	pattern   *regexp.Regexp
	questions []string
	// ignoresDetail forces the question even for detailed requests.
	ignoresDetail bool
}

var forcedTypes = []contentType{
	{
		name:    "love letter",
		pattern: regexp.MustCompile(`(?i)\blove letters?\b`),
		questions: []string{
			"Who is the letter for, and what do you call them?",
			"Which shared memories or moments should it bring up?",
			"Should it feel playful, tender, or deeply romantic?",
		},
		ignoresDetail: true,
	},
	{
		name:    "email",
		pattern: regexp.MustCompile(`(?i)\be-?mails?\b`),
		questions: []string{
			"Who is the recipient, and how well do you know them?",
			"What is the main point or request of the email?",
			"Are there details, dates, or deadlines it must mention?",
		},
	},
	{
		name:    "report",
		pattern: regexp.MustCompile(`(?i)\breports?\b`),
		questions: []string{
			"Who will read the report?",
			"What period, project, or data should it cover?",
			"How long should it be, and does it need specific sections?",
		},
	},
}

var genericQuestions = []string{
	"Who is the audience?",
	"What key points should it cover?",
	"What length and tone are you aiming for?",
}

// followUpLead opens every clarifying question so later turns can recognize it.
const followUpLead = "Before I start writing, a few quick questions"

// IsContentCreation reports whether message asks for a piece of writing.
func IsContentCreation(message string) bool {
	return creationVerb.MatchString(message) && contentNoun.MatchString(message)
}

func hasDetail(message string) bool {
	return len(message) > detailLength ||
		detailWords.MatchString(message) ||
		clauseBreak.MatchString(message)
}

// NeedsFollowUp decides whether a writing request is too thin to draft
// from and should be answered with a clarifying question instead.
func NeedsFollowUp(message string, history []Turn) bool {
	if !IsContentCreation(message) {
		return false
	}
	if lastAssistantAsked(history) {
		return false
	}

	if t := matchForced(message); t != nil && !alreadyAsked(history, t.name) {
		if t.ignoresDetail || !detailWords.MatchString(message) {
			return true
		}
	}
	return !hasDetail(message)
}

// IsFollowUpQuestion reports whether an assistant message is a clarifying
// question produced by FollowUpQuestion.
func IsFollowUpQuestion(content string) bool {
	return strings.HasPrefix(content, followUpLead)
}

func matchForced(message string) *contentType {
	for i := range forcedTypes {
		if forcedTypes[i].pattern.MatchString(message) {
			return &forcedTypes[i]
		}
	}
	return nil
}

func lastAssistantAsked(history []Turn) bool {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == roleAssistant {
			return IsFollowUpQuestion(history[i].Content)
		}
	}
	return false
}

func alreadyAsked(history []Turn, typeName string) bool {
	for _, t := range history {
		if t.Role == roleAssistant && IsFollowUpQuestion(t.Content) &&
			strings.Contains(strings.ToLower(t.Content), "your "+typeName) {
			return true
		}
	}
	return false
}

// FollowUpQuestion builds the clarifying question for message, specialized
// for the forced content types.
func FollowUpQuestion(message string) string {
	subject := "piece"
	questions := genericQuestions
	if t := matchForced(message); t != nil {
		subject = t.name
		questions = t.questions
	} else if noun := contentNoun.FindString(message); noun != "" {
		subject = strings.ToLower(noun)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s about your %s:\n\n", followUpLead, subject)
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	b.WriteString("\nShare whatever you can and I will write it in your voice.")
	return b.String()
}
