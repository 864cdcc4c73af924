package questions

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/pytutor/internal/llm"
)

// Feedback for verdicts the judge could not settle.
const (
	unavailableFeedback = "Your answer could not be validated right now, so it was not counted as correct."
	ambiguousPrefix     = "unexpected response from the judge: "
)

// Validator grades learner answers. Objective kinds are compared locally;
// scenario and write_code answers are judged by the model.
type Validator struct {
	sender Sender
	cfg    Config
}

// NewValidator creates a Validator.
func NewValidator(sender Sender, cfg Config) *Validator {
	return &Validator{sender: sender, cfg: cfg}
}

// Validate grades sub against r. An answer that cannot be judged is never
// reported as correct.
func (v *Validator) Validate(ctx context.Context, r *Record, sub Submission) Verdict {
	switch r.Kind {
	case KindMultipleChoice:
		return objectiveVerdict(choiceLabel(sub.Answer) == r.AnswerKey, r)
	case KindTrueFalse, KindFillInBlank:
		return objectiveVerdict(strings.EqualFold(strings.TrimSpace(sub.Answer), strings.TrimSpace(r.AnswerKey)), r)
	case KindScenario, KindWriteCode:
		return v.judge(ctx, r, sub)
	}
	return Verdict{
		Outcome:  OutcomeUnavailable,
		Feedback: fmt.Sprintf("cannot grade %q questions", r.Kind),
	}
}

// choiceLabel reads an option label from input such as "b", "B)" or
// "(B) print".
func choiceLabel(input string) string {
	m := choiceLetterRe.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

func objectiveVerdict(correct bool, r *Record) Verdict {
	if correct {
		return Verdict{Correct: true, Outcome: OutcomeCorrect, Feedback: "Correct!"}
	}
	return Verdict{
		Outcome:  OutcomeIncorrect,
		Feedback: fmt.Sprintf("Incorrect. The correct answer was %s.", r.AnswerText()),
	}
}

func (v *Validator) judge(ctx context.Context, r *Record, sub Submission) Verdict {
	ctx = llm.WithPurpose(ctx, llm.PurposeJudge)
	reply, ok := v.sender.Send(ctx, BuildJudgePrompt(r, sub), v.cfg.JudgeTemperature, v.cfg.JudgeTokens)
	if !ok {
		return Verdict{Outcome: OutcomeUnavailable, Feedback: unavailableFeedback}
	}
	return ParseVerdict(reply)
}

// BuildJudgePrompt asks the model to grade sub against r's reference answer.
func BuildJudgePrompt(r *Record, sub Submission) string {
	var b strings.Builder
	if r.Kind == KindWriteCode {
		b.WriteString("You are grading a student's solution to a Python coding challenge.\n\n")
		fmt.Fprintf(&b, "Challenge:\n%s\n\n", r.Prompt)
		fmt.Fprintf(&b, "Reference solution:\n```python\n%s\n```\n\n", r.AnswerKey)
		fmt.Fprintf(&b, "Student's code:\n```python\n%s\n```\n\n", strings.TrimRight(sub.Answer, "\n"))
		fmt.Fprintf(&b, "Output of the student's code:\n%s\n\n", orNone(sub.Stdout))
		fmt.Fprintf(&b, "Errors from the student's code:\n%s\n\n", orNone(sub.Stderr))
		b.WriteString("The student's code does not need to match the reference exactly; judge whether it solves the challenge.\n")
	} else {
		b.WriteString("You are grading a student's answer to a Python scenario question.\n\n")
		fmt.Fprintf(&b, "Scenario:\n%s\n\n", r.Prompt)
		fmt.Fprintf(&b, "Reference answer:\n%s\n\n", r.AnswerKey)
		fmt.Fprintf(&b, "Student's answer:\n%s\n\n", orNone(sub.Answer))
		b.WriteString("The student's answer does not need to match the reference word for word; judge whether it applies the right concepts.\n")
	}
	b.WriteString(`Start your reply with "Correct" or "Incorrect", then give one or two sentences of feedback addressed to the student.`)
	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return strings.TrimSpace(s)
}

// ParseVerdict interprets a judge reply. The whole reply is searched for
// "incorrect" before "correct", so a rejection anywhere in it wins. A reply
// that names neither is ambiguous and graded as incorrect.
func ParseVerdict(reply string) Verdict {
	text := strings.TrimSpace(reply)

	switch scanVerdict(strings.ToLower(text)) {
	case OutcomeCorrect:
		return Verdict{Correct: true, Outcome: OutcomeCorrect, Feedback: text}
	case OutcomeIncorrect:
		return Verdict{Outcome: OutcomeIncorrect, Feedback: text}
	}
	return Verdict{Outcome: OutcomeAmbiguous, Feedback: ambiguousPrefix + orNone(text)}
}

func scanVerdict(lower string) Outcome {
	switch {
	case strings.Contains(lower, "incorrect"), strings.Contains(lower, "not correct"):
		return OutcomeIncorrect
	case strings.Contains(lower, "correct"):
		return OutcomeCorrect
	}
	return ""
}
