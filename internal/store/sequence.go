package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceRow is the id of the single counter row.
const sequenceRow = 1

// sequenceCounter hands out one increasing number shared by the
// append-only tables (mistakes, LLM request events), so a learner's mistakes
// can be lined up against the model calls that produced the questions.
// The mutex serializes within the process; RETURNING makes the increment
// atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter seeds the counter row if it does not exist yet.
func newSequenceCounter(ctx context.Context, db *sql.DB) (*sequenceCounter, error) {
	seed := builder.Insert(GlobalSequenceTable.Name).
		Columns("id", "next_val").
		Values(sequenceRow, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
	if _, err := exec(ctx, db, seed); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{db: db}, nil
}

// Next returns the next sequence number and advances the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	stmt, args := builder.Update(GlobalSequenceTable.Name).
		Add("next_val", 1).
		Where(entsql.EQ("id", sequenceRow)).
		Returning("next_val").
		Query()

	var next int64
	if err := sc.db.QueryRowContext(ctx, stmt, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return next - 1, nil
}
