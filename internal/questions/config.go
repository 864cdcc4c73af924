package questions

import "github.com/abhisek/pytutor/internal/llm"

// Config controls question generation and grading.
type Config struct {
	// Temperature is used for question generation. Higher values give
	// the similarity check more varied candidates to choose from.
	Temperature float64

	// JudgeTemperature is used when grading open-ended answers.
	JudgeTemperature float64

	// QuestionTokens is the token budget for one generated question.
	QuestionTokens int

	// JudgeTokens is the token budget for one grading reply.
	JudgeTokens int

	// MaxAttemptsPerQuestion bounds consecutive failed attempts before a
	// generation session gives up.
	MaxAttemptsPerQuestion int

	// MaxTotalAttempts bounds all attempts in one Generate call. Zero means
	// Count * MaxAttemptsPerQuestion.
	MaxTotalAttempts int

	// SimilarityThreshold is the ratio above which a question is rejected
	// as a near-duplicate.
	SimilarityThreshold int
}

// DefaultConfig returns the recommended settings.
func DefaultConfig() Config {
	return Config{
		Temperature:            llm.DefaultTemperature,
		JudgeTemperature:       0.2,
		QuestionTokens:         300,
		JudgeTokens:            400,
		MaxAttemptsPerQuestion: 6,
		SimilarityThreshold:    DefaultSimilarityThreshold,
	}
}
