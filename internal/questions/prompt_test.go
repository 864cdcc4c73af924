package questions

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/abhisek/pytutor/internal/curriculum"
)

func loopsTopic() curriculum.TopicInfo {
	return curriculum.TopicInfo{
		TopicRef:     curriculum.TopicRef{Chapter: 5, Lesson: 2},
		ChapterTitle: "Control Flow",
		LessonTitle:  "Loops",
		Complexity:   2,
	}
}

func TestBuildPrompt_Sections(t *testing.T) {
	tests := []struct {
		kind Kind
		want []string
	}{
		{KindMultipleChoice, []string{"multiple-choice", "Question:", "Options:", "A)", "D)", "Correct Answer:"}},
		{KindTrueFalse, []string{"true/false", "Question:", "Correct Answer: <True or False>"}},
		{KindFillInBlank, []string{"fill-in-the-blank", blankToken, "parentheses"}},
		{KindScenario, []string{"scenario-based", "Scenario:", "Correct Answer:"}},
		{KindWriteCode, []string{"coding challenge", "```python", "sample solution"}},
	}

	for _, tc := range tests {
		prompt, err := BuildPrompt(loopsTopic(), tc.kind)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.kind, err)
		}
		if !strings.Contains(prompt, "Chapter: Control Flow\nLesson: Loops\n") {
			t.Errorf("%s: missing topic context:\n%s", tc.kind, prompt)
		}
		for _, w := range tc.want {
			if !strings.Contains(prompt, w) {
				t.Errorf("%s: prompt missing %q", tc.kind, w)
			}
		}
	}
}

func TestBuildPrompt_UnknownKind(t *testing.T) {
	_, err := BuildPrompt(loopsTopic(), Kind("essay"))
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestBuildContentPrompt(t *testing.T) {
	base, _ := BuildPrompt(loopsTopic(), KindTrueFalse)

	prompt, err := BuildContentPrompt(loopsTopic(), KindTrueFalse, "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt != base {
		t.Error("blank content should leave the prompt unchanged")
	}

	prompt, err = BuildContentPrompt(loopsTopic(), KindTrueFalse, "A for loop walks any iterable.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(prompt, "Based on the content below, generate a unique and non-repetitive true/false question:") {
		t.Errorf("missing content preamble:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"A for loop walks any iterable."`) {
		t.Error("content should be quoted in the prompt")
	}
	if !strings.HasSuffix(prompt, base) {
		t.Error("kind scaffolding should follow the content")
	}
}

func TestBuildLessonPrompt(t *testing.T) {
	prompt := BuildLessonPrompt(loopsTopic())
	if !strings.Contains(prompt, "Lesson: Loops") || !strings.Contains(prompt, "2-3 paragraphs") {
		t.Errorf("unexpected lesson prompt:\n%s", prompt)
	}
}

func TestKindPool(t *testing.T) {
	tests := []struct {
		title  string
		review bool
		code   bool
	}{
		{"What is Python?", false, false},
		{"Installing Python and Setting up PATH", false, false},
		{"Running Your First Python Program", false, false},
		{"For Loops and Iteration", false, true},
		{"Review Test: Control Flow", true, false},
	}
	for _, tc := range tests {
		topic := curriculum.TopicInfo{LessonTitle: tc.title, Review: tc.review}
		pool := KindPool(topic)
		if got := slices.Contains(pool, KindWriteCode); got != tc.code {
			t.Errorf("KindPool(%q) includes write_code = %v, want %v", tc.title, got, tc.code)
		}
		if !slices.Contains(pool, KindScenario) {
			t.Errorf("KindPool(%q) should include scenario", tc.title)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"multiple_choice":   KindMultipleChoice,
		"Multiple-Choice":   KindMultipleChoice,
		"true/false":        KindTrueFalse,
		"tf":                KindTrueFalse,
		"fill in the blank": KindFillInBlank,
		"scenario":          KindScenario,
		"code":              KindWriteCode,
		"write_code":        KindWriteCode,
	}
	for in, want := range tests {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseKind("essay"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestKindLabel(t *testing.T) {
	if got := KindMultipleChoice.Label(); got != "Multiple Choice" {
		t.Errorf("Label() = %q", got)
	}
	if got := KindScenario.Label(); got != "Scenario" {
		t.Errorf("Label() = %q", got)
	}
}
