package conversation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultTitle names a conversation before its first user message.
const DefaultTitle = "New Conversation"

const (
	provisionalTitleLength = 50
	maxTopicWords          = 8
	fallbackTitleWords     = 6
)

var (
	topicPattern = regexp.MustCompile(`(?i)\b(?:write|create|draft|compose|generate|prepare|help me(?: write)?)\b.*?\b(?:about|on|regarding)\s+(.+)`)
	topicStop    = regexp.MustCompile(`[.!?;,\n]|\s(?:mentioning|including|asking|requesting)\s`)
	leadArticle  = regexp.MustCompile(`(?i)^(?:the|a|an|my|our)\s+`)
)

// ProvisionalTitle is the title shown while the first reply is pending.
func ProvisionalTitle(content string) string {
	text := strings.Join(strings.Fields(content), " ")
	if text == "" {
		return DefaultTitle
	}
	return truncate(text, provisionalTitleLength)
}

// FinalTitle derives a title from the first user message: the topic after
// "about", "on" or "regarding" in a writing request, else the first words.
func FinalTitle(content string) string {
	text := strings.Join(strings.Fields(content), " ")
	if text == "" {
		return DefaultTitle
	}
	if topic := extractTopic(text); topic != "" {
		return topic
	}

	words := strings.Fields(text)
	if len(words) > fallbackTitleWords {
		return strings.Join(words[:fallbackTitleWords], " ") + "..."
	}
	if trimmed := strings.TrimRight(text, ".!?"); trimmed != "" {
		return trimmed
	}
	return truncate(text, provisionalTitleLength)
}

func extractTopic(text string) string {
	m := topicPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	topic := m[1]
	if loc := topicStop.FindStringIndex(topic); loc != nil {
		topic = topic[:loc[0]]
	}
	topic = leadArticle.ReplaceAllString(strings.TrimSpace(topic), "")
	words := strings.Fields(topic)
	if len(words) == 0 {
		return ""
	}
	if len(words) > maxTopicWords {
		words = words[:maxTopicWords]
	}
	return capitalize(strings.Join(words, " "))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// truncate cuts s to at most n runes, adding an ellipsis when shortened.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "..."
}
