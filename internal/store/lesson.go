package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// lessonRepo implements LessonRepo.
type lessonRepo struct {
	db *sql.DB
}

func (r *lessonRepo) Content(ctx context.Context, learnerID, chapter, lesson int) (string, bool, error) {
	sel := builder.Select("content").
		From(entsql.Table(LessonContentsTable.Name)).
		Where(lessonKey(learnerID, chapter, lesson))

	stmt, args := sel.Query()
	var content string
	err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get lesson content: %w", err)
	}
	return content, true, nil
}

func (r *lessonRepo) SaveContent(ctx context.Context, learnerID, chapter, lesson int, content string) error {
	insert := builder.Insert(LessonContentsTable.Name).
		Columns("learner_id", "chapter", "lesson", "content", "created_at").
		Values(learnerID, chapter, lesson, content, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("learner_id", "chapter", "lesson"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := exec(ctx, r.db, insert); err != nil {
		return fmt.Errorf("save lesson content: %w", err)
	}
	return nil
}

func (r *lessonRepo) SaveScore(ctx context.Context, score LessonScore) error {
	insert := builder.Insert(LessonScoresTable.Name).
		Columns("learner_id", "chapter", "lesson", "correct", "total", "passed", "updated_at").
		Values(score.LearnerID, score.Chapter, score.Lesson, score.Correct, score.Total, score.Passed, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("learner_id", "chapter", "lesson"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := exec(ctx, r.db, insert); err != nil {
		return fmt.Errorf("save lesson score: %w", err)
	}
	return nil
}

func (r *lessonRepo) Scores(ctx context.Context, learnerID int) ([]LessonScore, error) {
	sel := builder.Select("learner_id", "chapter", "lesson", "correct", "total", "passed", "updated_at").
		From(entsql.Table(LessonScoresTable.Name)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy("chapter", "lesson")

	rows, err := query(ctx, r.db, sel)
	if err != nil {
		return nil, fmt.Errorf("list lesson scores: %w", err)
	}
	defer rows.Close()

	var out []LessonScore
	for rows.Next() {
		var s LessonScore
		if err := rows.Scan(&s.LearnerID, &s.Chapter, &s.Lesson, &s.Correct, &s.Total, &s.Passed, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lesson score: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func lessonKey(learnerID, chapter, lesson int) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("learner_id", learnerID),
		entsql.EQ("chapter", chapter),
		entsql.EQ("lesson", lesson),
	)
}
