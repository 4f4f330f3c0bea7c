package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/finboard/finboard/apps/server/schemas"
	"github.com/finboard/finboard/apps/server/services"
	"github.com/finboard/finboard/apps/server/services/ledger"
	"github.com/finboard/finboard/pkg/db"
	"github.com/google/uuid"
)

type CreateTransactionInput struct {
	Body struct {
		Amount      float64    `json:"amount" minimum:"0" doc:"Amount, non-negative"`
		Type        string     `json:"type" enum:"revenue,expense"`
		Category    string     `json:"category" minLength:"1"`
		Description string     `json:"description,omitempty"`
		Date        *time.Time `json:"date,omitempty" doc:"Defaults to now"`
		Status      string     `json:"status,omitempty" enum:"completed,pending,failed," doc:"Defaults to completed"`
	}
}

type TransactionOutput struct {
	Body schemas.Transaction
}

type ListTransactionsInput struct {
	Page     int    `query:"page" default:"1" minimum:"1"`
	Limit    int    `query:"limit" default:"10" minimum:"1" maximum:"100"`
	Type     string `query:"type" enum:"revenue,expense," required:"false"`
	Category string `query:"category" required:"false"`
	Status   string `query:"status" enum:"completed,pending,failed," required:"false"`
}

type ListTransactionsOutput struct {
	Body schemas.TransactionList
}

type TransactionByIDInput struct {
	ID uuid.UUID `path:"id" doc:"Transaction ID"`
}

type UpdateTransactionInput struct {
	ID   uuid.UUID `path:"id" doc:"Transaction ID"`
	Body struct {
		Amount      *float64   `json:"amount,omitempty" minimum:"0"`
		Type        *string    `json:"type,omitempty" enum:"revenue,expense"`
		Category    *string    `json:"category,omitempty" minLength:"1"`
		Description *string    `json:"description,omitempty"`
		Date        *time.Time `json:"date,omitempty"`
		Status      *string    `json:"status,omitempty" enum:"completed,pending,failed"`
	}
}

func ledgerError(err error) error {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		return huma.Error400BadRequest(verr.Error())
	case errors.Is(err, ledger.ErrNotFound):
		return huma.Error404NotFound("transaction not found")
	default:
		return huma.Error500InternalServerError("transaction operation failed", err)
	}
}

func RegisterTransactions(api huma.API, svcs *services.Services) {
	requireAuth := huma.Middlewares{svcs.IAM.RequireAuth(api)}

	huma.Register(api, huma.Operation{
		OperationID: "create-transaction",
		Method:      http.MethodPost,
		Path:        "/transactions",
		Summary:     "Create a transaction",
		Tags:        []string{TagTransactions.String()},
		Security:    BearerAuth,
		Middlewares: requireAuth,
	}, func(ctx context.Context, input *CreateTransactionInput) (*TransactionOutput, error) {
		principal := svcs.IAM.Must(ctx)

		p := ledger.CreateParams{
			Amount:      input.Body.Amount,
			Type:        input.Body.Type,
			Category:    input.Body.Category,
			Description: input.Body.Description,
			Status:      input.Body.Status,
		}
		if input.Body.Date != nil {
			p.Date = *input.Body.Date
		}

		tx, err := svcs.Ledger.Create(ctx, principal.ID, p)
		if err != nil {
			return nil, ledgerError(err)
		}
		return &TransactionOutput{Body: schemas.NewTransaction(tx)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-transactions",
		Method:      http.MethodGet,
		Path:        "/transactions",
		Summary:     "List the caller's transactions",
		Description: "Date-descending, paginated, with optional type/category/status filters.",
		Tags:        []string{TagTransactions.String()},
		Security:    BearerAuth,
		Middlewares: requireAuth,
	}, func(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
		principal := svcs.IAM.Must(ctx)

		page, err := svcs.Ledger.List(ctx, principal.ID, db.TransactionFilter{
			Type:     input.Type,
			Category: input.Category,
			Status:   input.Status,
		}, input.Page, input.Limit)
		if err != nil {
			return nil, ledgerError(err)
		}

		resp := &ListTransactionsOutput{}
		resp.Body.Transactions = make([]schemas.Transaction, 0, len(page.Transactions))
		for i := range page.Transactions {
			resp.Body.Transactions = append(resp.Body.Transactions, schemas.NewTransaction(&page.Transactions[i]))
		}
		resp.Body.Total = page.Total
		resp.Body.TotalPages = page.TotalPages
		resp.Body.CurrentPage = page.CurrentPage
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-transaction",
		Method:      http.MethodGet,
		Path:        "/transactions/{id}",
		Summary:     "Get one transaction",
		Tags:        []string{TagTransactions.String()},
		Security:    BearerAuth,
		Middlewares: requireAuth,
	}, func(ctx context.Context, input *TransactionByIDInput) (*TransactionOutput, error) {
		principal := svcs.IAM.Must(ctx)

		tx, err := svcs.Ledger.Get(ctx, principal.ID, input.ID)
		if err != nil {
			return nil, ledgerError(err)
		}
		return &TransactionOutput{Body: schemas.NewTransaction(tx)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-transaction",
		Method:      http.MethodPut,
		Path:        "/transactions/{id}",
		Summary:     "Update a transaction",
		Tags:        []string{TagTransactions.String()},
		Security:    BearerAuth,
		Middlewares: requireAuth,
	}, func(ctx context.Context, input *UpdateTransactionInput) (*TransactionOutput, error) {
		principal := svcs.IAM.Must(ctx)

		tx, err := svcs.Ledger.Update(ctx, principal.ID, input.ID, ledger.UpdateParams{
			Amount:      input.Body.Amount,
			Type:        input.Body.Type,
			Category:    input.Body.Category,
			Description: input.Body.Description,
			Date:        input.Body.Date,
			Status:      input.Body.Status,
		})
		if err != nil {
			return nil, ledgerError(err)
		}
		return &TransactionOutput{Body: schemas.NewTransaction(tx)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-transaction",
		Method:      http.MethodDelete,
		Path:        "/transactions/{id}",
		Summary:     "Delete a transaction",
		Tags:        []string{TagTransactions.String()},
		Security:    BearerAuth,
		Middlewares: requireAuth,
	}, func(ctx context.Context, input *TransactionByIDInput) (*MessageOutput, error) {
		principal := svcs.IAM.Must(ctx)

		if err := svcs.Ledger.Delete(ctx, principal.ID, input.ID); err != nil {
			return nil, ledgerError(err)
		}

		resp := &MessageOutput{}
		resp.Body.Message = "transaction deleted"
		return resp, nil
	})
}
