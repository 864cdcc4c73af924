package questions

import (
	"regexp"
	"strings"
)

var scenarioMarkerRe = regexp.MustCompile(`(?i)^scenario\s*\d*\s*:\s*`)

func parseScenario(raw string) (*Record, *ParseError) {
	var (
		body, answer []string
		inAnswer     bool
	)

	for _, line := range cleanLines(raw) {
		if inAnswer {
			answer = append(answer, line)
			continue
		}
		if rest, ok := answerMarker(line); ok {
			inAnswer = true
			if rest != "" {
				answer = append(answer, rest)
			}
			continue
		}
		if loc := scenarioMarkerRe.FindStringIndex(line); loc != nil {
			// Anything before the marker is preamble.
			body = body[:0]
			if rest := strings.TrimSpace(line[loc[1]:]); rest != "" {
				body = append(body, rest)
			}
			continue
		}
		if isScaffold(line) {
			continue
		}
		if text := stripLabel(line, questionLabels...); text != "" {
			body = append(body, text)
		}
	}

	switch {
	case !inAnswer:
		return nil, parseErr(KindScenario, "missing correct answer")
	case len(body) == 0:
		return nil, parseErr(KindScenario, "scenario is empty")
	case len(answer) == 0:
		return nil, parseErr(KindScenario, "answer is empty")
	}

	return &Record{
		Kind:      KindScenario,
		Prompt:    strings.Join(body, "\n"),
		AnswerKey: strings.Join(answer, "\n"),
	}, nil
}

var (
	fenceRe        = regexp.MustCompile("^\\s*```")
	solutionLeadRe = regexp.MustCompile(`(?i)\bsolution\s*:?$`)

	taskLabels = []string{"Coding Challenge:", "Challenge:", "Task:", "Problem:", headerQuestion}
)

func parseWriteCode(raw string) (*Record, *ParseError) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	open := -1
	for i, line := range lines {
		if fenceRe.MatchString(line) {
			open = i
			break
		}
	}
	if open < 0 {
		return nil, parseErr(KindWriteCode, "no fenced solution")
	}
	closing := -1
	for i := open + 1; i < len(lines); i++ {
		if fenceRe.MatchString(lines[i]) {
			closing = i
			break
		}
	}
	if closing < 0 {
		return nil, parseErr(KindWriteCode, "solution fence is not closed")
	}

	var task []string
	for _, line := range lines[:open] {
		c := cleanLine(line)
		if c == "" || isScaffold(c) {
			continue
		}
		if c = stripLabel(c, taskLabels...); c != "" {
			task = append(task, c)
		}
	}
	for len(task) > 0 && solutionLeadRe.MatchString(task[len(task)-1]) {
		task = task[:len(task)-1]
	}

	solution := joinCode(lines[open+1 : closing])

	switch {
	case len(task) == 0:
		return nil, parseErr(KindWriteCode, "task description is empty")
	case solution == "":
		return nil, parseErr(KindWriteCode, "solution is empty")
	}

	return &Record{
		Kind:      KindWriteCode,
		Prompt:    strings.Join(task, "\n"),
		AnswerKey: solution,
	}, nil
}

// joinCode right-trims each line and drops blank lines at either end,
// keeping indentation.
func joinCode(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, strings.TrimRight(l, " \t\r"))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
