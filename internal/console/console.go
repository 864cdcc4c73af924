// Package console is the line-oriented terminal front end used while a
// learner plays lessons and reviews.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pytutor/internal/ui/components"
	"github.com/abhisek/pytutor/internal/ui/theme"
)

// ErrClosed is returned when input ends before an answer was given.
var ErrClosed = errors.New("input closed")

// CodeTerminator ends a multi-line code answer.
const CodeTerminator = "END"

// scoreBarWidth is the width of the summary score bar.
const scoreBarWidth = 40

// Console reads answers and writes styled output. Colors are downsampled
// to what out supports, so redirected output is plain text.
type Console struct {
	in  *bufio.Scanner
	out io.Writer
}

// New creates a Console.
func New(in io.Reader, out io.Writer) *Console {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Console{in: sc, out: out}
}

func (c *Console) println(s string) {
	lipgloss.Fprintln(c.out, s)
}

// Blank writes an empty line.
func (c *Console) Blank() {
	c.println("")
}

// Heading writes a title and an optional subtitle.
func (c *Console) Heading(title, subtitle string) {
	c.Blank()
	c.println(theme.Title.Render("--- " + title + " ---"))
	if subtitle != "" {
		c.println(theme.Subtitle.Render(subtitle))
	}
}

// Text writes body text.
func (c *Console) Text(s string) {
	c.println(theme.Body.Render(s))
}

// Textf writes formatted body text.
func (c *Console) Textf(format string, args ...any) {
	c.Text(fmt.Sprintf(format, args...))
}

// Note writes a dimmed hint.
func (c *Console) Note(s string) {
	c.println(theme.Hint.Render(s))
}

// Success writes a positive outcome.
func (c *Console) Success(s string) {
	c.println(theme.Correct.Render(s))
}

// Failure writes a negative outcome.
func (c *Console) Failure(s string) {
	c.println(theme.Incorrect.Render(s))
}

// Warn writes a caution, such as a shortened quiz.
func (c *Console) Warn(s string) {
	c.println(theme.Caution.Render(s))
}

// Option writes one labelled multiple-choice option.
func (c *Console) Option(label, text string) {
	c.println(theme.Label.Render(label+")") + " " + theme.Body.Render(text))
}

// Code writes a block of code or program output.
func (c *Console) Code(s string) {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		s = "(no output)"
	}
	c.println(theme.Code.Render(s))
}

// Score writes a score line with a bar. A positive passMark is marked on
// the bar.
func (c *Console) Score(label string, correct, total, passMark int) {
	c.println(components.NewScoreBar(label, correct, total, passMark, scoreBarWidth).View())
}

// Ask writes prompt and returns the next trimmed input line.
func (c *Console) Ask(prompt string) (string, error) {
	lipgloss.Fprint(c.out, theme.Label.Render(prompt)+" ")
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// AskBlock writes prompt and collects lines until CodeTerminator. Input
// that ends after at least one line is accepted as the answer.
func (c *Console) AskBlock(prompt string) (string, error) {
	c.println(theme.Label.Render(prompt))
	var lines []string
	for {
		line, err := c.readLine()
		if errors.Is(err, ErrClosed) && len(lines) > 0 {
			break
		}
		if err != nil {
			return "", err
		}
		if strings.EqualFold(strings.TrimSpace(line), CodeTerminator) {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n") + "\n", nil
}

func (c *Console) readLine() (string, error) {
	if c.in.Scan() {
		return c.in.Text(), nil
	}
	if err := c.in.Err(); err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return "", ErrClosed
}
