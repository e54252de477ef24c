package lesson

import (
	"errors"
	"fmt"
	"slices"
)

const (
	// QuizLength is the number of questions a lesson must carry.
	QuizLength = 3
	// OptionCount is the number of choices per quiz question.
	OptionCount = 4
)

var (
	// ErrUnparsableOutput means no JSON document could be recovered from
	// the model's raw text, even after falling back to parsing the whole
	// reply.
	ErrUnparsableOutput = errors.New("could not parse JSON from model output")

	// ErrIncompleteOutput means the model returned JSON but it is missing
	// required lesson fields or carries a malformed quiz.
	ErrIncompleteOutput = errors.New("incomplete lesson from model")
)

// QuizItem is one multiple-choice question. Options holds exactly four
// entries and Answer is an exact match of one of them.
type QuizItem struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Payload is the structured lesson the model is asked to produce: a short
// title, the spoken script and a quiz.
type Payload struct {
	Title  string     `json:"title"`
	Script string     `json:"script"`
	Quiz   []QuizItem `json:"quiz"`
}

// Validate enforces the quiz contract on a parsed payload.
func (p *Payload) Validate() error {
	if len(p.Quiz) != QuizLength {
		return fmt.Errorf("%w: quiz has %d items, want %d", ErrIncompleteOutput, len(p.Quiz), QuizLength)
	}
	for i, item := range p.Quiz {
		if len(item.Options) != OptionCount {
			return fmt.Errorf("%w: quiz item %d has %d options, want %d", ErrIncompleteOutput, i, len(item.Options), OptionCount)
		}
		if !slices.Contains(item.Options, item.Answer) {
			return fmt.Errorf("%w: quiz item %d answer %q not among options", ErrIncompleteOutput, i, item.Answer)
		}
	}
	return nil
}
