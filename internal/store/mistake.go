package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// mistakeRepo implements MistakeRepo.
type mistakeRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var mistakeColumns = []string{
	"id", "sequence", "learner_id", "session_id", "chapter", "lesson", "origin_lesson",
	"kind", "question", "learner_answer", "correct_answer", "feedback",
	"code", "output", "errors", "created_at",
}

func (r *mistakeRepo) Record(ctx context.Context, m *Mistake) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	if m.OriginLesson == 0 {
		m.OriginLesson = m.Lesson
	}
	now := time.Now().UTC()

	insert := builder.Insert(MistakesTable.Name).
		Columns(mistakeColumns[1:]...).
		Values(
			seqNum, m.LearnerID, m.SessionID, m.Chapter, m.Lesson, m.OriginLesson,
			m.Kind, m.Question, m.LearnerAnswer, m.CorrectAnswer, m.Feedback,
			m.Code, m.Output, m.Errors, now,
		)
	res, err := exec(ctx, r.db, insert)
	if err != nil {
		return fmt.Errorf("record mistake: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("record mistake: %w", err)
	}

	m.ID = int(id)
	m.Sequence = seqNum
	m.CreatedAt = now
	return nil
}

func (r *mistakeRepo) List(ctx context.Context, learnerID int, q MistakeQuery) ([]Mistake, error) {
	preds := []*entsql.Predicate{entsql.EQ("learner_id", learnerID)}
	if q.Chapter > 0 {
		preds = append(preds, entsql.EQ("chapter", q.Chapter))
	}

	sel := builder.Select(mistakeColumns...).
		From(entsql.Table(MistakesTable.Name)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("sequence"))
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}

	rows, err := query(ctx, r.db, sel)
	if err != nil {
		return nil, fmt.Errorf("list mistakes: %w", err)
	}
	defer rows.Close()

	var out []Mistake
	for rows.Next() {
		var m Mistake
		err := rows.Scan(
			&m.ID, &m.Sequence, &m.LearnerID, &m.SessionID, &m.Chapter, &m.Lesson, &m.OriginLesson,
			&m.Kind, &m.Question, &m.LearnerAnswer, &m.CorrectAnswer, &m.Feedback,
			&m.Code, &m.Output, &m.Errors, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan mistake: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *mistakeRepo) Clear(ctx context.Context, learnerID, chapter, lesson int) error {
	del := builder.Delete(MistakesTable.Name).Where(entsql.And(
		entsql.EQ("learner_id", learnerID),
		entsql.EQ("chapter", chapter),
		entsql.EQ("lesson", lesson),
	))
	if _, err := exec(ctx, r.db, del); err != nil {
		return fmt.Errorf("clear mistakes %d.%d: %w", chapter, lesson, err)
	}
	return nil
}

func (r *mistakeRepo) CountByOriginLesson(ctx context.Context, learnerID, chapter int) (map[int]int, error) {
	return r.count(ctx, "origin_lesson", entsql.And(
		entsql.EQ("learner_id", learnerID),
		entsql.EQ("chapter", chapter),
	))
}

func (r *mistakeRepo) CountByChapter(ctx context.Context, learnerID, lesson int) (map[int]int, error) {
	return r.count(ctx, "chapter", entsql.And(
		entsql.EQ("learner_id", learnerID),
		entsql.EQ("lesson", lesson),
	))
}

func (r *mistakeRepo) count(ctx context.Context, groupBy string, where *entsql.Predicate) (map[int]int, error) {
	sel := builder.Select(groupBy, entsql.As(entsql.Count("*"), "n")).
		From(entsql.Table(MistakesTable.Name)).
		Where(where).
		GroupBy(groupBy)

	rows, err := query(ctx, r.db, sel)
	if err != nil {
		return nil, fmt.Errorf("count mistakes by %s: %w", groupBy, err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var key, n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan mistake count: %w", err)
		}
		counts[key] = n
	}
	return counts, rows.Err()
}
