package session

import (
	"time"

	"github.com/abhisek/pytutor/internal/questions"
)

// KindResult is the score for one question kind.
type KindResult struct {
	Kind    questions.Kind
	Asked   int
	Correct int
}

// SessionSummary holds the data shown when a session ends.
type SessionSummary struct {
	ID             string
	Plan           Plan
	Duration       time.Duration
	Requested      int
	TotalQuestions int
	TotalCorrect   int
	Accuracy       float64
	Passed         bool
	KindResults    []KindResult

	// Advanced is set when the learner's pointer moved on.
	Advanced bool
	Next     string
}

// BuildSummary creates a SessionSummary from the session state. passed is
// decided by the caller against the curriculum's pass mark.
func BuildSummary(state *SessionState, passed bool, now time.Time) *SessionSummary {
	var results []KindResult
	index := make(map[questions.Kind]int)
	for _, a := range state.Answers {
		i, ok := index[a.Record.Kind]
		if !ok {
			i = len(results)
			index[a.Record.Kind] = i
			results = append(results, KindResult{Kind: a.Record.Kind})
		}
		results[i].Asked++
		if a.Verdict.Correct {
			results[i].Correct++
		}
	}

	var accuracy float64
	if n := len(state.Answers); n > 0 {
		accuracy = float64(state.TotalCorrect) / float64(n)
	}

	return &SessionSummary{
		ID:             state.ID,
		Plan:           state.Plan,
		Duration:       now.Sub(state.StartTime),
		Requested:      state.Plan.Count,
		TotalQuestions: len(state.Answers),
		TotalCorrect:   state.TotalCorrect,
		Accuracy:       accuracy,
		Passed:         passed,
		KindResults:    results,
	}
}
