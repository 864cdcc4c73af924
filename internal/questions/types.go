// Package questions turns free-form model text into typed quiz questions
// and grades learner answers against them.
package questions

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/abhisek/pytutor/internal/curriculum"
)

// Kind is a question type.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindTrueFalse      Kind = "true_false"
	KindFillInBlank    Kind = "fill_in_the_blank"
	KindScenario       Kind = "scenario"
	KindWriteCode      Kind = "write_code"
)

// AllKinds lists every kind in prompt order.
var AllKinds = []Kind{KindMultipleChoice, KindTrueFalse, KindFillInBlank, KindScenario, KindWriteCode}

// kindPhrase is how prompts and labels refer to each kind.
var kindPhrase = map[Kind]string{
	KindMultipleChoice: "multiple-choice",
	KindTrueFalse:      "true/false",
	KindFillInBlank:    "fill-in-the-blank",
	KindScenario:       "scenario-based",
	KindWriteCode:      "coding challenge",
}

var titleCaser = cases.Title(language.English)

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	_, ok := kindPhrase[k]
	return ok
}

// Label is the display name of the kind, e.g. "Multiple Choice".
func (k Kind) Label() string {
	return titleCaser.String(strings.ReplaceAll(string(k), "_", " "))
}

// Judged reports whether answers to k are graded by a model call rather
// than by comparison.
func (k Kind) Judged() bool {
	return k == KindScenario || k == KindWriteCode
}

// ParseKind converts a kind name, accepting the labels users type on the
// command line ("multiple-choice", "fill in the blank", "code").
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_", "/", "_").Replace(norm)
	switch norm {
	case "mc", "choice":
		return KindMultipleChoice, nil
	case "tf", "truefalse", "true_or_false":
		return KindTrueFalse, nil
	case "blank", "fill", "fill_in_blank":
		return KindFillInBlank, nil
	case "code", "coding", "code_challenge":
		return KindWriteCode, nil
	}
	k := Kind(norm)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Option is one labelled multiple-choice option.
type Option struct {
	Label string
	Text  string
}

// Record is a parsed, structurally valid question.
type Record struct {
	Kind Kind

	// Prompt is the learner-facing question text without any scaffolding.
	Prompt string

	// Options holds the A-D options in order. Multiple choice only.
	Options []Option

	// AnswerKey is the option label, "true"/"false", the expected text, or
	// the reference solution code depending on Kind.
	AnswerKey string

	// Topic is where the question is asked. Origin is where it was drawn
	// from; the two differ only for review questions.
	Topic  curriculum.TopicRef
	Origin curriculum.TopicRef
}

// OptionText returns the text of the option with the given label.
func (r *Record) OptionText(label string) (string, bool) {
	for _, o := range r.Options {
		if o.Label == label {
			return o.Text, true
		}
	}
	return "", false
}

// AnswerText is the answer as shown to a learner after a miss.
func (r *Record) AnswerText() string {
	if r.Kind == KindMultipleChoice {
		if text, ok := r.OptionText(r.AnswerKey); ok {
			return r.AnswerKey + ") " + text
		}
	}
	return r.AnswerKey
}

// Outcome classifies a verdict.
type Outcome string

const (
	OutcomeCorrect     Outcome = "correct"
	OutcomeIncorrect   Outcome = "incorrect"
	OutcomeAmbiguous   Outcome = "ambiguous"
	OutcomeUnavailable Outcome = "unavailable"
)

// Verdict is the result of grading one answer. Correct is true only for
// OutcomeCorrect.
type Verdict struct {
	Correct  bool
	Feedback string
	Outcome  Outcome
}

// Submission is a learner's answer. Stdout and Stderr carry the captured
// output of submitted code for write_code questions.
type Submission struct {
	Answer string
	Stdout string
	Stderr string
}
