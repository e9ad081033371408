package textstat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyInput(t *testing.T) {
	assert.Empty(t, Words(""))
	assert.Empty(t, Sentences(""))
	assert.Empty(t, Paragraphs(""))
	assert.Empty(t, Words("   \n\t "))
}

func TestWords(t *testing.T) {
	got := Words("Hello, World! Don't   panic.")
	assert.Equal(t, []string{"hello", "world", "dont", "panic"}, got)
}

func TestSentences(t *testing.T) {
	got := Sentences("First one. Second one!  Third one? Fourth")
	assert.Equal(t, []string{"First one", "Second one", "Third one", "Fourth"}, got)
}

func TestSentencesOverSplitAbbreviations(t *testing.T) {
	// Known limitation: abbreviations end a sentence.
	got := Sentences("Dr. Smith arrived at 5 p.m. today.")
	assert.Len(t, got, 3)
}

func TestSentencesKeepsDecimalWithoutTrailingSpace(t *testing.T) {
	got := Sentences("Pi is 3.14 roughly.")
	assert.Len(t, got, 1)
}

func TestParagraphs(t *testing.T) {
	text := "First paragraph\nstill first.\n\nSecond.\r\n\r\n\n  \nThird."
	got := Paragraphs(text)
	assert.Equal(t, []string{"First paragraph\nstill first.", "Second.", "Third."}, got)
}
