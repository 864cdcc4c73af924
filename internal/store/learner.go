package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// learnerRepo implements LearnerRepo.
type learnerRepo struct {
	db *sql.DB
}

var learnerColumns = []string{"id", "name", "chapter", "lesson", "created_at", "updated_at"}

func (r *learnerRepo) GetOrCreate(ctx context.Context, name string) (*Learner, error) {
	l, err := r.Get(ctx, name)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	insert := builder.Insert(LearnersTable.Name).
		Columns("name", "chapter", "lesson", "created_at", "updated_at").
		Values(name, 1, 1, now, now)
	res, err := exec(ctx, r.db, insert)
	if err != nil {
		return nil, fmt.Errorf("create learner %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create learner %q: %w", name, err)
	}

	return &Learner{ID: int(id), Name: name, Chapter: 1, Lesson: 1, CreatedAt: now, UpdatedAt: now}, nil
}

func (r *learnerRepo) Get(ctx context.Context, name string) (*Learner, error) {
	sel := builder.Select(learnerColumns...).
		From(entsql.Table(LearnersTable.Name)).
		Where(entsql.EQ("name", name))

	stmt, args := sel.Query()
	var l Learner
	err := r.db.QueryRowContext(ctx, stmt, args...).
		Scan(&l.ID, &l.Name, &l.Chapter, &l.Lesson, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("learner %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get learner %q: %w", name, err)
	}
	return &l, nil
}

func (r *learnerRepo) List(ctx context.Context) ([]Learner, error) {
	sel := builder.Select(learnerColumns...).
		From(entsql.Table(LearnersTable.Name)).
		OrderBy("name")

	rows, err := query(ctx, r.db, sel)
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	defer rows.Close()

	var out []Learner
	for rows.Next() {
		var l Learner
		if err := rows.Scan(&l.ID, &l.Name, &l.Chapter, &l.Lesson, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan learner: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *learnerRepo) SetProgress(ctx context.Context, learnerID, chapter, lesson int) error {
	update := builder.Update(LearnersTable.Name).
		Set("chapter", chapter).
		Set("lesson", lesson).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", learnerID))

	res, err := exec(ctx, r.db, update)
	if err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("learner %d: %w", learnerID, ErrNotFound)
	}
	return nil
}

func (r *learnerRepo) Reset(ctx context.Context, learnerID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{MistakesTable.Name, LessonContentsTable.Name, LessonScoresTable.Name} {
		stmt, args := builder.Delete(table).Where(entsql.EQ("learner_id", learnerID)).Query()
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	stmt, args := builder.Update(LearnersTable.Name).
		Set("chapter", 1).
		Set("lesson", 1).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", learnerID)).
		Query()
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("rewind progress: %w", err)
	}

	return tx.Commit()
}
