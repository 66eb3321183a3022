package ai

import (
	"fmt"
	"strings"
)

// CardCount is how many cards the generation prompt asks for.
const CardCount = 5

const flashcardPrompt = "From the text below, create %d concise flashcards in the format " +
	"'Question: [your question] | Answer: [your answer]'.\n" +
	"Each flashcard must be on its own line. Do not add numbering or bullets.\n\n" +
	"Text:\n---\n%s\n---"

// FlashcardPrompt builds the generation prompt for text.
func FlashcardPrompt(text string) string {
	return fmt.Sprintf(flashcardPrompt, CardCount, strings.TrimSpace(text))
}

// CardText is a parsed front/back pair.
type CardText struct {
	Front string
	Back  string
}

// ParseFlashcards extracts "Question: ... | Answer: ..." lines from a model
// reply. Lines without the separator or with an empty side are skipped.
func ParseFlashcards(reply string) []CardText {
	var cards []CardText
	for _, line := range strings.Split(strings.TrimSpace(reply), "\n") {
		front, back, ok := strings.Cut(line, " | ")
		if !ok {
			continue
		}
		front = trimLabel(front, "Question:")
		back = trimLabel(back, "Answer:")
		if front == "" || back == "" {
			continue
		}
		cards = append(cards, CardText{Front: front, Back: back})
	}
	return cards
}

// trimLabel drops list markers and a leading label, case-insensitively.
func trimLabel(s, label string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-*• ")
	if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
		s = s[len(label):]
	}
	return strings.TrimSpace(s)
}
