package prompt

import (
	"testing"

	"github.com/kakuhq/kaku/internal/style"
	"github.com/stretchr/testify/assert"
)

func TestNeedsFollowUpScenarios(t *testing.T) {
	assert.True(t, NeedsFollowUp("write an email", nil))
	assert.False(t, NeedsFollowUp("write an email to my landlord about the broken heater, mentioning the lease clause and requesting repair within 5 days", nil))
}

func TestNeedsFollowUp(t *testing.T) {
	tests := []struct {
		name    string
		message string
		history []Turn
		want    bool
	}{
		{"not a writing request", "what is the capital of France", nil, false},
		{"verb without noun", "help me think", nil, false},
		{"short generic request", "draft a blog post", nil, true},
		{"detailed generic request", "draft a blog post about remote work, focusing on async communication", nil, false},
		{"long request", "compose a poem for the retirement party of my colleague Anna who spent thirty years teaching chemistry at our school", nil, false},
		{"report with detail words", "write a report for the board covering the third quarter results of the northern sales region in the usual layout", nil, false},
		{"report without detail words", "please generate a quarterly report for the northern region sales team that my manager can read quickly today", nil, true},
		{"love letter ignores detail", "write a love letter about our trip to Lisbon, mentioning the tram", nil, true},
		{
			name:    "previous turn asked already",
			message: "write an email",
			history: []Turn{
				{Role: "user", Content: "write an email"},
				{Role: "assistant", Content: FollowUpQuestion("write an email")},
			},
			want: false,
		},
		{
			name:    "greeting is not a follow-up",
			message: "write an essay",
			history: []Turn{{Role: "assistant", Content: "Hello! What would you like to write today?"}},
			want:    true,
		},
		{
			name:    "forced type already asked earlier",
			message: "write a love letter about our trip to Lisbon, mentioning the tram",
			history: []Turn{
				{Role: "assistant", Content: FollowUpQuestion("write a love letter")},
				{Role: "user", Content: "never mind"},
				{Role: "assistant", Content: "Okay."},
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsFollowUp(tt.message, tt.history))
		})
	}
}

func TestFollowUpQuestion(t *testing.T) {
	q := FollowUpQuestion("Write an email")
	assert.True(t, IsFollowUpQuestion(q))
	assert.Contains(t, q, "your email")
	assert.Contains(t, q, "1. Who is the recipient")

	q = FollowUpQuestion("create a newsletter")
	assert.Contains(t, q, "your newsletter")
	assert.Contains(t, q, "Who is the audience?")

	assert.False(t, IsFollowUpQuestion("Sure, here is your draft."))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "very formal", FormalityLabel(8))
	assert.Equal(t, "formal", FormalityLabel(6.5))
	assert.Equal(t, "balanced between formal and casual", FormalityLabel(4))
	assert.Equal(t, "casual", FormalityLabel(2))
	assert.Equal(t, "very casual", FormalityLabel(1.9))

	assert.Equal(t, "long and complex", SentenceLengthLabel(26))
	assert.Equal(t, "moderate in length", SentenceLengthLabel(25))
	assert.Equal(t, "short and direct", SentenceLengthLabel(15))

	assert.Equal(t, "extended", ParagraphLengthLabel(101))
	assert.Equal(t, "moderate in length", ParagraphLengthLabel(100))
	assert.Equal(t, "concise", ParagraphLengthLabel(50))
}

func TestSystemPromptWithProfile(t *testing.T) {
	p := SystemPrompt(Options{
		Profile: style.Profile{
			HasDocuments:           true,
			FormalityScore:         8.4,
			AverageSentenceLength:  18,
			AverageParagraphLength: 40,
			CommonComplexWords:     []string{"consideration"},
			CommonTransitions:      []string{"however"},
			SampleText:             "Sample paragraph.",
		},
		Style:   StyleProfessional,
		Purpose: PurposeSocialMedia,
		Context: "[Source: Notes (similarity: 0.91)]\nSome grounding text",
	})

	assert.Contains(t, p, "Tone: very formal.")
	assert.Contains(t, p, "Sentences: moderate in length.")
	assert.Contains(t, p, "Paragraphs: concise.")
	assert.Contains(t, p, "consideration")
	assert.Contains(t, p, "Sample paragraph.")
	assert.Contains(t, p, styleDirectives[StyleProfessional])
	assert.Contains(t, p, purposeDirectives[PurposeSocialMedia])
	assert.Contains(t, p, "[Source: Notes (similarity: 0.91)]\nSome grounding text")
	assert.NotContains(t, p, "8.4")
}

func TestSystemPromptEmptyCorpus(t *testing.T) {
	p := SystemPrompt(Options{Profile: style.Profile{FormalityScore: 5}, Style: "unknown", Purpose: ""})

	assert.Contains(t, p, "natural, conversational tone")
	assert.Contains(t, p, "uploads a few samples")
	assert.NotContains(t, p, "The user's writing style")
	assert.NotContains(t, p, "Relevant excerpts")
	assert.Contains(t, p, "Original: ")
	assert.Contains(t, p, "General: ")
}

func TestParsePresets(t *testing.T) {
	assert.Equal(t, StyleCasual, ParseStyle(" casual "))
	assert.Equal(t, StyleOriginal, ParseStyle("Baroque"))
	assert.Equal(t, PurposeSocialMedia, ParsePurpose("social media"))
	assert.Equal(t, PurposeGeneral, ParsePurpose(""))
	for _, s := range Styles {
		assert.NotEmpty(t, styleDirectives[s], s)
	}
	for _, p := range Purposes {
		assert.NotEmpty(t, purposeDirectives[p], p)
	}
}

func TestStages(t *testing.T) {
	assert.Equal(t, StageAwaitingDetails, Next("", true, false))
	assert.Equal(t, StageGenerate, Next(StageAwaitingDetails, false, false))
	assert.Equal(t, StageDrafted, Next(StageAwaitingDetails, false, true))
	assert.Equal(t, StageDrafted, Next(StageSaved, false, true))
	assert.Equal(t, StageGenerate, Next(StageDrafted, false, false))
	assert.Equal(t, StageAwaitingDetails, Next(StageSaved, true, false))
	assert.Equal(t, StageAwaitingDetails, Next(StageGenerate, true, false))
	assert.Equal(t, StageGenerate, Next(StageAwaitingDetails, true, false))

	assert.True(t, StageDrafted.CanTransition(StageSaved))
	assert.True(t, Stage("").CanTransition(StageReceived))
	assert.False(t, StageReceived.CanTransition(StageSaved))
	assert.False(t, StageAwaitingDetails.CanTransition(StageDrafted))
}
