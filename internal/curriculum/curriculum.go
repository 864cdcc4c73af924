// Package curriculum describes the chapters and lessons pytutor teaches.
package curriculum

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
)

//go:embed curriculum.yaml
var defaultDocument []byte

// TopicRef identifies a lesson by chapter and lesson number.
type TopicRef struct {
	Chapter int
	Lesson  int
}

func (r TopicRef) String() string {
	return fmt.Sprintf("%d.%d", r.Chapter, r.Lesson)
}

// TopicInfo is a TopicRef resolved against the curriculum.
type TopicInfo struct {
	TopicRef
	ChapterTitle string
	LessonTitle  string
	Complexity   int
	Review       bool
}

// Lesson is one entry of a chapter.
type Lesson struct {
	Number        int    `yaml:"number"`
	Title         string `yaml:"title"`
	QuestionCount int    `yaml:"question_count"`
	Complexity    int    `yaml:"complexity"`
	Review        bool   `yaml:"review"`
}

// Chapter groups lessons. A cumulative chapter holds the final review that
// spans every other chapter.
type Chapter struct {
	Number     int      `yaml:"number"`
	Title      string   `yaml:"title"`
	Cumulative bool     `yaml:"cumulative"`
	Lessons    []Lesson `yaml:"lessons"`
}

// Curriculum is an ordered set of chapters.
type Curriculum struct {
	Version  string    `yaml:"version"`
	PassMark int       `yaml:"pass_mark"`
	Chapters []Chapter `yaml:"chapters"`

	byChapter map[int]*Chapter
}

// Default returns the embedded curriculum.
func Default() *Curriculum {
	c, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("embedded curriculum is invalid: %v", err))
	}
	return c
}

// Load reads a curriculum document from path.
func Load(path string) (*Curriculum, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("curriculum %s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault loads path, or returns the embedded curriculum when path
// is empty.
func LoadOrDefault(path string) (*Curriculum, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *Curriculum) index() {
	sort.Slice(c.Chapters, func(i, j int) bool { return c.Chapters[i].Number < c.Chapters[j].Number })
	c.byChapter = make(map[int]*Chapter, len(c.Chapters))
	for i := range c.Chapters {
		ch := &c.Chapters[i]
		sort.Slice(ch.Lessons, func(a, b int) bool { return ch.Lessons[a].Number < ch.Lessons[b].Number })
		c.byChapter[ch.Number] = ch
	}
}

// Chapter returns chapter n.
func (c *Curriculum) Chapter(n int) (*Chapter, bool) {
	ch, ok := c.byChapter[n]
	return ch, ok
}

// Lesson returns the lesson at ref.
func (c *Curriculum) Lesson(ref TopicRef) (*Lesson, bool) {
	ch, ok := c.byChapter[ref.Chapter]
	if !ok {
		return nil, false
	}
	return ch.Lesson(ref.Lesson)
}

// Topic resolves ref into titles and hints.
func (c *Curriculum) Topic(ref TopicRef) (TopicInfo, error) {
	ch, ok := c.byChapter[ref.Chapter]
	if !ok {
		return TopicInfo{}, fmt.Errorf("chapter %d is not in the curriculum", ref.Chapter)
	}
	l, ok := ch.Lesson(ref.Lesson)
	if !ok {
		return TopicInfo{}, fmt.Errorf("lesson %s is not in the curriculum", ref)
	}
	return TopicInfo{
		TopicRef:     ref,
		ChapterTitle: ch.Title,
		LessonTitle:  l.Title,
		Complexity:   l.Complexity,
		Review:       l.Review,
	}, nil
}

// Next returns the lesson after ref, moving into the next chapter when
// ref is the last lesson of its chapter. ok is false at the very end.
func (c *Curriculum) Next(ref TopicRef) (TopicRef, bool) {
	ch, found := c.byChapter[ref.Chapter]
	if !found {
		return TopicRef{}, false
	}
	for i, l := range ch.Lessons {
		if l.Number == ref.Lesson && i+1 < len(ch.Lessons) {
			return TopicRef{Chapter: ch.Number, Lesson: ch.Lessons[i+1].Number}, true
		}
	}
	for _, next := range c.Chapters {
		if next.Number > ch.Number && len(next.Lessons) > 0 {
			return TopicRef{Chapter: next.Number, Lesson: next.Lessons[0].Number}, true
		}
	}
	return TopicRef{}, false
}

// Cumulative returns the cumulative review chapter, if the curriculum has one.
func (c *Curriculum) Cumulative() (*Chapter, bool) {
	for i := range c.Chapters {
		if c.Chapters[i].Cumulative {
			return &c.Chapters[i], true
		}
	}
	return nil, false
}

// Teaching returns the chapters that hold regular lessons, in order.
func (c *Curriculum) Teaching() []Chapter {
	var out []Chapter
	for _, ch := range c.Chapters {
		if !ch.Cumulative {
			out = append(out, ch)
		}
	}
	return out
}

// PassThreshold is the number of correct answers out of total needed to
// pass. It rounds up, so a one-question review still needs its answer.
func (c *Curriculum) PassThreshold(total int) int {
	return (c.PassMark*total + 99) / 100
}

// Passed reports whether correct out of total meets the pass mark.
func (c *Curriculum) Passed(correct, total int) bool {
	if total == 0 {
		return false
	}
	return correct >= c.PassThreshold(total)
}

// Lesson returns lesson n of the chapter.
func (ch *Chapter) Lesson(n int) (*Lesson, bool) {
	for i := range ch.Lessons {
		if ch.Lessons[i].Number == n {
			return &ch.Lessons[i], true
		}
	}
	return nil, false
}

// Review returns the chapter's review lesson.
func (ch *Chapter) Review() (*Lesson, bool) {
	for i := range ch.Lessons {
		if ch.Lessons[i].Review {
			return &ch.Lessons[i], true
		}
	}
	return nil, false
}

// Regular returns the chapter's non-review lessons.
func (ch *Chapter) Regular() []Lesson {
	var out []Lesson
	for _, l := range ch.Lessons {
		if !l.Review {
			out = append(out, l)
		}
	}
	return out
}
