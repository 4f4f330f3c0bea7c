package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	TransactionRevenue = "revenue"
	TransactionExpense = "expense"
)

const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
)

type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID     uuid.UUID `bun:"type:uuid,default:gen_random_uuid(),pk"`
	UserID uuid.UUID `bun:"type:uuid,notnull"`

	Amount      float64   `bun:",notnull"`
	Type        string    `bun:",notnull"` // revenue | expense
	Category    string    `bun:",notnull"`
	Description string    `bun:",nullzero"`
	Date        time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	Status      string    `bun:",notnull,default:'completed'"` // completed | pending | failed

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// ValidTransactionType reports whether t is a known transaction type.
func ValidTransactionType(t string) bool {
	return t == TransactionRevenue || t == TransactionExpense
}

// ValidTransactionStatus reports whether s is a known transaction status.
func ValidTransactionStatus(s string) bool {
	return s == StatusCompleted || s == StatusPending || s == StatusFailed
}
