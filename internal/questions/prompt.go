package questions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/pytutor/internal/curriculum"
)

// ErrUnknownKind is returned for a kind outside the five known kinds.
var ErrUnknownKind = errors.New("unknown question kind")

// Section headers shared by the prompt templates and the parsers.
const (
	headerQuestion = "Question:"
	headerOptions  = "Options:"
	headerAnswer   = "Correct Answer:"
	headerScenario = "Scenario:"
	blankToken     = "________"
)

// formatInstructions holds the scaffolding the model is asked to follow for
// each kind.
var formatInstructions = map[Kind]string{
	KindMultipleChoice: `Provide four answer options labeled A, B, C, D and indicate the correct one.
Use exactly this format:
Question: <the question>
Options:
A) <option>
B) <option>
C) <option>
D) <option>
Correct Answer: <letter>`,

	KindTrueFalse: `Clearly state the correct answer (True or False).
Use exactly this format:
Question: <a statement that is either true or false>
Correct Answer: <True or False>`,

	KindFillInBlank: `The question must contain '` + blankToken + `'. Provide the correct answer in parentheses.
Use exactly this format:
Question: <a sentence with ` + blankToken + ` in place of the missing word> (<answer>)`,

	KindScenario: `The scenario should present a problem, requiring the student to apply concepts from the lesson.
Use exactly this format:
Scenario: <the situation and what the student must decide or explain>
Correct Answer: <a model answer>`,

	KindWriteCode: "Describe the task in one or two sentences, then provide a sample solution.\n" +
		"Use exactly this format:\n" +
		"<the task>\n" +
		"```python\n" +
		"<sample solution>\n" +
		"```",
}

// BuildPrompt returns the generation prompt for one question of kind about
// topic.
func BuildPrompt(topic curriculum.TopicInfo, kind Kind) (string, error) {
	phrase, ok := kindPhrase[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s question for:\n", phrase)
	fmt.Fprintf(&b, "Chapter: %s\n", topic.ChapterTitle)
	fmt.Fprintf(&b, "Lesson: %s\n", topic.LessonTitle)
	b.WriteString(formatInstructions[kind])
	return b.String(), nil
}

// BuildContentPrompt grounds the generation prompt in lesson content. An
// empty content falls back to BuildPrompt.
func BuildContentPrompt(topic curriculum.TopicInfo, kind Kind, content string) (string, error) {
	base, err := BuildPrompt(topic, kind)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return base, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the content below, generate a unique and non-repetitive %s question:\n", kindPhrase[kind])
	fmt.Fprintf(&b, "\"%s\"\n", content)
	b.WriteString("Ensure it covers a specific aspect of the lesson and is distinct from other potential questions.\n")
	b.WriteString(base)
	return b.String(), nil
}

// BuildLessonPrompt returns the prompt for a lesson's teaching text.
func BuildLessonPrompt(topic curriculum.TopicInfo) string {
	var b strings.Builder
	b.WriteString("Provide an educational and engaging lesson on the following topic:\n")
	fmt.Fprintf(&b, "Chapter: %s\n", topic.ChapterTitle)
	fmt.Fprintf(&b, "Lesson: %s\n", topic.LessonTitle)
	b.WriteString("The lesson should include 2-3 paragraphs explaining the concept, examples, and key points to remember.")
	return b.String()
}

// introKeywords mark lessons that only orient the learner.
var introKeywords = []string{
	"introduction", "overview", "getting started", "what is",
	"setting up", "first", "installing",
}

// nonCodeKinds is the pool for introductory and review lessons.
var nonCodeKinds = []Kind{KindMultipleChoice, KindTrueFalse, KindFillInBlank, KindScenario}

// KindPool returns the kinds a lesson may be quizzed with. Introductory
// and review lessons leave out coding challenges.
func KindPool(topic curriculum.TopicInfo) []Kind {
	if topic.Review || isIntroductory(topic.LessonTitle) {
		return append([]Kind(nil), nonCodeKinds...)
	}
	return append([]Kind(nil), AllKinds...)
}

func isIntroductory(title string) bool {
	t := strings.ToLower(title)
	for _, kw := range introKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}
