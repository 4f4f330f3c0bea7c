package schemas

import (
	"time"

	"github.com/finboard/finboard/pkg/db/models"
)

// Transaction is the public transaction payload.
type Transaction struct {
	ID          string    `json:"id" doc:"Unique identifier of the transaction"`
	Amount      float64   `json:"amount" doc:"Amount, non-negative"`
	Type        string    `json:"type" enum:"revenue,expense"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status" enum:"completed,pending,failed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewTransaction(tx *models.Transaction) Transaction {
	return Transaction{
		ID:          tx.ID.String(),
		Amount:      tx.Amount,
		Type:        tx.Type,
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date,
		Status:      tx.Status,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

// TransactionList is a page of transactions with its pagination envelope.
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total" doc:"Total rows matching the filter"`
	TotalPages   int           `json:"totalPages"`
	CurrentPage  int           `json:"currentPage"`
}
