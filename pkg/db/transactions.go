package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/finboard/finboard/pkg/db/models"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TransactionFilter narrows owner-scoped transaction listings.
// Empty fields are ignored.
type TransactionFilter struct {
	Type     string
	Category string
	Status   string
}

// TransactionStore is the bun-backed persistence layer for transactions.
// Every query is owner-scoped; there is no cross-user access path.
type TransactionStore struct {
	db *bun.DB
}

func NewTransactionStore(db *bun.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Insert(ctx context.Context, tx *models.Transaction) error {
	_, err := s.db.NewInsert().Model(tx).Returning("*").Exec(ctx)
	return err
}

func (s *TransactionStore) ByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.NewSelect().
		Model(&tx).
		Where("t.id = ?", id).
		Where("t.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// List returns a page of the owner's transactions, date-descending, plus the
// total count matching the filter.
func (s *TransactionStore) List(ctx context.Context, userID uuid.UUID, f TransactionFilter, page, limit int) ([]models.Transaction, int, error) {
	var txs []models.Transaction
	q := s.db.NewSelect().
		Model(&txs).
		Where("t.user_id = ?", userID)

	if f.Type != "" {
		q = q.Where("t.type = ?", f.Type)
	}
	if f.Category != "" {
		q = q.Where("t.category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("t.status = ?", f.Status)
	}

	total, err := q.
		Order("date DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (s *TransactionStore) Update(ctx context.Context, tx *models.Transaction) error {
	tx.UpdatedAt = time.Now()
	res, err := s.db.NewUpdate().
		Model(tx).
		WherePK().
		Where("user_id = ?", tx.UserID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TransactionStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.NewDelete().
		Model((*models.Transaction)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
