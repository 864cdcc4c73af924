package questions

import (
	"regexp"
	"strings"
)

var (
	optionRe       = regexp.MustCompile(`^\(?([A-D])[).:]\s*(.*)$`)
	// choiceLetterRe reads an option label. A bare letter followed by a
	// space is an article ("a tuple"), not a label.
	choiceLetterRe = regexp.MustCompile(`^\(?([A-Da-d])(?:[).:,]|$)`)
)

func parseMultipleChoice(raw string) (*Record, *ParseError) {
	var (
		question []string
		options  []Option
		seen     = make(map[string]bool)
		answer   string
		marked   bool
		stated   string
	)

	for _, line := range cleanLines(raw) {
		if rest, ok := answerMarker(line); ok {
			marked = true
			stated = rest
			break
		}
		if isScaffold(line) {
			continue
		}
		if m := optionRe.FindStringSubmatch(line); m != nil {
			label, text := m[1], strings.TrimSpace(m[2])
			if seen[label] {
				return nil, parseErr(KindMultipleChoice, "duplicate option %s", label)
			}
			if text == "" {
				return nil, parseErr(KindMultipleChoice, "option %s is empty", label)
			}
			seen[label] = true
			options = append(options, Option{Label: label, Text: text})
			continue
		}
		// Text after the options (explanations, notes) is not part of the
		// question.
		if len(options) == 0 {
			if body := stripLabel(line, questionLabels...); body != "" {
				question = append(question, body)
			}
		}
	}

	if marked {
		answer = resolveChoice(stated, options)
	}

	switch {
	case len(question) == 0:
		return nil, parseErr(KindMultipleChoice, "no question text")
	case len(options) == 0:
		return nil, parseErr(KindMultipleChoice, "no options")
	case !marked:
		return nil, parseErr(KindMultipleChoice, "missing correct answer")
	case answer == "":
		return nil, parseErr(KindMultipleChoice, "correct answer does not name an option")
	case !seen[answer]:
		return nil, parseErr(KindMultipleChoice, "correct answer %s is not one of the options", answer)
	}

	return &Record{
		Kind:      KindMultipleChoice,
		Prompt:    strings.Join(question, "\n"),
		Options:   options,
		AnswerKey: answer,
	}, nil
}

// resolveChoice maps the text after a correct-answer marker to an option
// label, either by its letter or by repeating an option's text.
func resolveChoice(stated string, options []Option) string {
	stated = strings.TrimSpace(stated)
	if m := choiceLetterRe.FindStringSubmatch(stated); m != nil {
		return strings.ToUpper(m[1])
	}
	text := strings.TrimRight(stated, ".!")
	for _, o := range options {
		if strings.EqualFold(text, strings.TrimRight(o.Text, ".!")) {
			return o.Label
		}
	}
	return ""
}

var (
	trueFalseLabels = []string{"True or False:", "True/False:", "True or false?", headerQuestion, "Q:"}

	// truthRe reads a leading verdict word. The second group catches the
	// template being echoed back ("True or False").
	truthRe = regexp.MustCompile(`(?i)^[("'*\s]*(true|false)\b(\s*(?:/|or)\s*(?:true|false)\b)?`)
)

func parseTrueFalse(raw string) (*Record, *ParseError) {
	lines := cleanLines(raw)

	bodyIdx := -1
	var body string
	for i, line := range lines {
		if isScaffold(line) {
			continue
		}
		if _, ok := answerMarker(line); ok {
			return nil, parseErr(KindTrueFalse, "answer appears before the statement")
		}
		body = stripLabel(line, trueFalseLabels...)
		if body != "" {
			bodyIdx = i
			break
		}
	}
	if bodyIdx < 0 {
		return nil, parseErr(KindTrueFalse, "no statement")
	}
	if bodyIdx == len(lines)-1 {
		return nil, parseErr(KindTrueFalse, "no answer line")
	}

	// An explicit answer line wins over explanations that follow it.
	decider := lines[len(lines)-1]
	for _, line := range lines[bodyIdx+1:] {
		if rest, ok := answerMarker(line); ok && strings.TrimSpace(rest) != "" {
			decider = line
			break
		}
	}
	key, ok := truthValue(decider)
	if !ok {
		return nil, parseErr(KindTrueFalse, "cannot tell true from false in %q", decider)
	}

	return &Record{
		Kind:      KindTrueFalse,
		Prompt:    body,
		AnswerKey: key,
	}, nil
}

// truthValue decides "true" or "false" from an answer line. A line that
// names neither, or both without a leading verdict, is undecidable.
func truthValue(line string) (string, bool) {
	text := line
	if rest, ok := answerMarker(line); ok {
		text = rest
	}

	if m := truthRe.FindStringSubmatch(text); m != nil {
		if m[2] != "" {
			return "", false
		}
		return strings.ToLower(m[1]), true
	}

	lower := strings.ToLower(text)
	hasTrue := strings.Contains(lower, "true")
	hasFalse := strings.Contains(lower, "false")
	switch {
	case hasTrue && !hasFalse:
		return "true", true
	case hasFalse && !hasTrue:
		return "false", true
	}
	return "", false
}

const blankPattern = `_{2,}|-{3,}|\[\s*(?:\.\.\.|…|blank)?\s*\]`

var (
	blankRe         = regexp.MustCompile(blankPattern)
	wholeBlankRe    = regexp.MustCompile(`^(?:` + blankPattern + `)[.!?]?$`)
	// danglingBlankRe catches a blank that trails a finished sentence with
	// only the answer after it. A blank opening a new sentence is fine.
	danglingBlankRe = regexp.MustCompile(`[.!?]\s+(?:` + blankPattern + `)\s*(?:\([^()]*\))?\s*[.!?]?$`)
	trailingParenRe = regexp.MustCompile(`\(([^()]+)\)\s*[.!?]?\s*$`)
	parenRe         = regexp.MustCompile(`\(([^()]+)\)`)

	fillLabels = []string{"Fill in the blanks:", "Fill in the blank:", headerQuestion, "Q:"}
)

func parseFillInBlank(raw string) (*Record, *ParseError) {
	lines := cleanLines(raw)

	idx := -1
	sawWholeBlank := false
	for i, line := range lines {
		if isScaffold(line) || !blankRe.MatchString(line) {
			continue
		}
		if _, ok := answerMarker(line); ok {
			continue
		}
		if wholeBlankRe.MatchString(stripLabel(line, fillLabels...)) {
			sawWholeBlank = true
			continue
		}
		idx = i
		break
	}
	if idx < 0 {
		if sawWholeBlank {
			return nil, parseErr(KindFillInBlank, "blank is the whole line")
		}
		return nil, parseErr(KindFillInBlank, "no blank")
	}

	line := stripLabel(lines[idx], fillLabels...)
	if danglingBlankRe.MatchString(line) {
		return nil, parseErr(KindFillInBlank, "blank follows a finished sentence")
	}

	question, answer := line, ""
	if m := trailingParenRe.FindStringSubmatchIndex(line); m != nil && !blankRe.MatchString(line[m[2]:m[3]]) {
		answer = line[m[2]:m[3]]
		question = line[:m[0]]
	} else {
		answer = separateAnswer(lines[idx+1:])
	}

	answer = strings.Trim(answer, " .`'\"")
	if answer == "" {
		return nil, parseErr(KindFillInBlank, "no answer")
	}
	if blankRe.MatchString(answer) {
		return nil, parseErr(KindFillInBlank, "answer is itself a blank")
	}
	if !blankRe.MatchString(question) {
		return nil, parseErr(KindFillInBlank, "blank was consumed by the answer")
	}

	return &Record{
		Kind:      KindFillInBlank,
		Prompt:    strings.TrimSpace(blankRe.ReplaceAllString(question, blankToken)),
		AnswerKey: answer,
	}, nil
}

// separateAnswer finds a fill-in answer given on a later line, either after
// a correct-answer marker or in parentheses on the final line.
func separateAnswer(rest []string) string {
	for _, line := range rest {
		if ans, ok := answerMarker(line); ok {
			return strings.Trim(ans, "() ")
		}
	}
	if len(rest) == 0 {
		return ""
	}
	matches := parenRe.FindAllStringSubmatch(rest[len(rest)-1], -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}
