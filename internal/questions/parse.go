package questions

import (
	"fmt"
	"regexp"
	"strings"
)

// ParseError reports model text that does not have the structure its kind
// requires. It is the expected signal to regenerate, not a fault.
type ParseError struct {
	Kind   Kind
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed %s question: %s", e.Kind, e.Reason)
}

func parseErr(kind Kind, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Parse converts raw model text into a Record of the given kind. Text that
// is missing required structure yields a *ParseError; an unknown kind
// yields ErrUnknownKind.
func Parse(kind Kind, raw string) (*Record, error) {
	var (
		rec *Record
		err *ParseError
	)
	switch kind {
	case KindMultipleChoice:
		rec, err = parseMultipleChoice(raw)
	case KindTrueFalse:
		rec, err = parseTrueFalse(raw)
	case KindFillInBlank:
		rec, err = parseFillInBlank(raw)
	case KindScenario:
		rec, err = parseScenario(raw)
	case KindWriteCode:
		rec, err = parseWriteCode(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

var (
	headingRe = regexp.MustCompile(`^#+\s*`)
	bulletRe  = regexp.MustCompile(`^[-*+•]\s+`)
	boldRe    = regexp.MustCompile(`\*\*([^*]+)\*\*`)

	// scaffoldRe matches heading lines copied from the prompt that carry
	// no question content.
	scaffoldRe = regexp.MustCompile(`(?i)^(?:` +
		`(?:chapter|lesson)\s*\d*\s*[:\-].*` +
		`|(?:multiple[- ]?choice|true\s*(?:/|or)\s*false|fill[- ]in[- ]the[- ]blanks?|scenario[- ]based|coding)(?:\s+(?:question|challenge))?\s*:?` +
		`|(?:options|question\s*\d*|sample\s+solution|solution)\s*:?` +
		`)$`)

	answerMarkerRe = regexp.MustCompile(`(?i)^\(?\s*(?:(?:the\s+)?correct\s+answer(?:\s+is)?\s*[:\-]?|answer\s*[:\-])\s*`)
)

// cleanLine strips markdown noise and surrounding whitespace.
func cleanLine(s string) string {
	s = strings.TrimSpace(s)
	s = headingRe.ReplaceAllString(s, "")
	s = bulletRe.ReplaceAllString(s, "")
	s = boldRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// cleanLines splits raw into cleaned, non-empty lines.
func cleanLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if c := cleanLine(line); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func isScaffold(line string) bool {
	return scaffoldRe.MatchString(line)
}

// stripLabel removes the first matching label prefix, case-insensitively.
func stripLabel(line string, labels ...string) string {
	lower := strings.ToLower(line)
	for _, l := range labels {
		if strings.HasPrefix(lower, strings.ToLower(l)) {
			return strings.TrimSpace(line[len(l):])
		}
	}
	return line
}

// answerMarker reports whether line starts with a correct-answer marker
// and returns the text after it.
func answerMarker(line string) (string, bool) {
	loc := answerMarkerRe.FindStringIndex(line)
	if loc == nil {
		return "", false
	}
	rest := strings.TrimSpace(line[loc[1]:])
	if strings.HasPrefix(line, "(") {
		rest = strings.TrimSpace(strings.TrimSuffix(rest, ")"))
	}
	return rest, true
}

// questionLabels are prefixes removed from question bodies.
var questionLabels = []string{headerQuestion, "Q:"}
