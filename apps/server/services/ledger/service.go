// Package ledger implements owner-scoped transaction CRUD. Every operation
// takes the owner's user ID; there is no path to another user's rows.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finboard/finboard/pkg/db"
	"github.com/finboard/finboard/pkg/db/models"
	"github.com/finboard/finboard/pkg/flog"
	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	// ErrNotFound covers both a missing transaction and one owned by
	// someone else; callers cannot tell the difference.
	ErrNotFound = errors.New("transaction not found")
)

// ValidationError carries per-field messages for a 400 response.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// Transactions is the persistence surface the ledger needs. The bun-backed
// db.TransactionStore satisfies it.
type Transactions interface {
	Insert(ctx context.Context, tx *models.Transaction) error
	ByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, f db.TransactionFilter, page, limit int) ([]models.Transaction, int, error)
	Update(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type Service struct {
	txs    Transactions
	logger *flog.Logger
}

func New(txs Transactions, logger *flog.Logger) *Service {
	return &Service{txs: txs, logger: logger}
}

// CreateParams carries a new transaction. Zero Date means "now"; empty
// Status means completed.
type CreateParams struct {
	Amount      float64
	Type        string
	Category    string
	Description string
	Date        time.Time
	Status      string
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, p CreateParams) (*models.Transaction, error) {
	if p.Status == "" {
		p.Status = models.StatusCompleted
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}

	tx := &models.Transaction{
		UserID:      userID,
		Amount:      p.Amount,
		Type:        p.Type,
		Category:    strings.TrimSpace(p.Category),
		Description: strings.TrimSpace(p.Description),
		Date:        p.Date,
		Status:      p.Status,
	}
	if err := s.txs.Insert(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func validate(p CreateParams) error {
	var fields []string
	if p.Amount < 0 {
		fields = append(fields, "amount cannot be negative")
	}
	if !models.ValidTransactionType(p.Type) {
		fields = append(fields, fmt.Sprintf("type must be %q or %q", models.TransactionRevenue, models.TransactionExpense))
	}
	if strings.TrimSpace(p.Category) == "" {
		fields = append(fields, "category is required")
	}
	if !models.ValidTransactionStatus(p.Status) {
		fields = append(fields, fmt.Sprintf("status must be %q, %q or %q", models.StatusCompleted, models.StatusPending, models.StatusFailed))
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	tx, err := s.txs.ByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tx, nil
}

// Page is one page of a transaction listing plus its pagination envelope.
type Page struct {
	Transactions []models.Transaction
	Total        int
	TotalPages   int
	CurrentPage  int
}

// List returns the owner's transactions, newest date first. Out-of-range
// page/limit values are clamped to defaults rather than rejected.
func (s *Service) List(ctx context.Context, userID uuid.UUID, f db.TransactionFilter, page, limit int) (*Page, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if f.Type != "" && !models.ValidTransactionType(f.Type) {
		return nil, &ValidationError{Fields: []string{"unknown type filter"}}
	}
	if f.Status != "" && !models.ValidTransactionStatus(f.Status) {
		return nil, &ValidationError{Fields: []string{"unknown status filter"}}
	}

	txs, total, err := s.txs.List(ctx, userID, f, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return &Page{
		Transactions: txs,
		Total:        total,
		TotalPages:   totalPages,
		CurrentPage:  page,
	}, nil
}

// UpdateParams is a partial transaction update; nil means "leave as is".
type UpdateParams struct {
	Amount      *float64
	Type        *string
	Category    *string
	Description *string
	Date        *time.Time
	Status      *string
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, p UpdateParams) (*models.Transaction, error) {
	tx, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.Category != nil {
		tx.Category = strings.TrimSpace(*p.Category)
	}
	if p.Description != nil {
		tx.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.Status != nil {
		tx.Status = *p.Status
	}

	if err := validate(CreateParams{
		Amount:   tx.Amount,
		Type:     tx.Type,
		Category: tx.Category,
		Status:   tx.Status,
	}); err != nil {
		return nil, err
	}

	if err := s.txs.Update(ctx, tx); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tx, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.txs.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
