package lessons

import "github.com/abhisek/pytutor/internal/curriculum"

// Source says where lesson text came from.
type Source string

const (
	SourceStore  Source = "store"
	SourceShared Source = "shared"
	SourceModel  Source = "model"
)

// Lesson is the prose shown before a lesson's questions.
type Lesson struct {
	Topic   curriculum.TopicRef
	Title   string
	Content string
	Source  Source
}
