// Package service implements the Use-Case Orchestrators: StartSession and
// SubmitAnswer, each a transactional script over the Session Aggregate.
// Grounded line-for-line on the original's
// StartPlacementTestInteractor / SubmitAnswerInteractor
// (app/application/interactors.py) and on the teacher's
// service/txrunner.go unit-of-work pattern.
package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/langtest/catengine/core/db"
	"github.com/langtest/catengine/internal/repository"
)

// TxRunner runs fn with a Repository bound to a single database
// transaction, committing on success and rolling back on any error —
// generalized from the teacher's StoreProvider-per-call pattern down to
// the single aggregate repository this engine owns.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repo repository.Repository) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner over database.
func NewTxRunner(database *db.DB) TxRunner {
	return &dbTxRunner{db: database}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(repo repository.Repository) error) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		repo := repository.NewPostgresRepository(tx)
		return fn(repo)
	})
}
