package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match (empty = any)
	From    time.Time // timestamp >= From
}

// Learner is a named learner and the next lesson they will play.
type Learner struct {
	ID        int
	Name      string
	Chapter   int
	Lesson    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LearnerRepo manages learners and their progress pointer.
type LearnerRepo interface {
	// GetOrCreate returns the learner with the given name, creating one at
	// chapter 1, lesson 1 if none exists.
	GetOrCreate(ctx context.Context, name string) (*Learner, error)

	// Get returns the named learner or ErrNotFound.
	Get(ctx context.Context, name string) (*Learner, error)

	// List returns all learners ordered by name.
	List(ctx context.Context) ([]Learner, error)

	// SetProgress moves the learner's pointer to chapter/lesson.
	SetProgress(ctx context.Context, learnerID, chapter, lesson int) error

	// Reset clears mistakes, cached lessons and scores and rewinds progress
	// to chapter 1, lesson 1.
	Reset(ctx context.Context, learnerID int) error
}

// Mistake records one incorrectly answered question.
type Mistake struct {
	ID        int
	Sequence  int64
	LearnerID int
	SessionID string
	Chapter   int
	Lesson    int
	// OriginLesson is the lesson the question was drawn from. It equals
	// Lesson except for review questions.
	OriginLesson  int
	Kind          string
	Question      string
	LearnerAnswer string
	CorrectAnswer string
	Feedback      string
	Code          string
	Output        string
	Errors        string
	CreatedAt     time.Time
}

// MistakeQuery filters mistake listings. Zero values match everything.
type MistakeQuery struct {
	Chapter int
	Limit   int
}

// MistakeRepo records and aggregates mistakes.
type MistakeRepo interface {
	// Record appends a mistake, assigning ID, Sequence and CreatedAt.
	Record(ctx context.Context, m *Mistake) error

	// List returns the learner's mistakes, newest first.
	List(ctx context.Context, learnerID int, q MistakeQuery) ([]Mistake, error)

	// Clear deletes the mistakes made in one lesson so a replay starts
	// fresh.
	Clear(ctx context.Context, learnerID, chapter, lesson int) error

	// CountByOriginLesson returns mistake counts in chapter keyed by
	// origin lesson.
	CountByOriginLesson(ctx context.Context, learnerID, chapter int) (map[int]int, error)

	// CountByChapter returns mistake counts made in the given lesson
	// number of every chapter, keyed by chapter.
	CountByChapter(ctx context.Context, learnerID, lesson int) (map[int]int, error)
}

// LessonScore is the learner's latest result for one lesson.
type LessonScore struct {
	LearnerID int
	Chapter   int
	Lesson    int
	Correct   int
	Total     int
	Passed    bool
	UpdatedAt time.Time
}

// Percent returns the score as a percentage, or 0 for an empty lesson.
func (s LessonScore) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) * 100 / float64(s.Total)
}

// LessonRepo caches generated lesson content and stores lesson scores.
type LessonRepo interface {
	// Content returns cached lesson text and whether it was found.
	Content(ctx context.Context, learnerID, chapter, lesson int) (string, bool, error)

	// SaveContent stores lesson text, replacing any previous copy.
	SaveContent(ctx context.Context, learnerID, chapter, lesson int, content string) error

	// SaveScore upserts the score for a lesson.
	SaveScore(ctx context.Context, score LessonScore) error

	// Scores returns every score for the learner ordered by chapter, lesson.
	Scores(ctx context.Context, learnerID int) ([]LessonScore, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a recorded LLM call.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates calls and tokens for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}
