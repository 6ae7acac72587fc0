package http

import (
	"errors"
	"html/template"
	"net/http"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// handleCreateTransaction records a new transaction from the entry form.
// Form fields: type, amount, category, description, date (YYYY-MM-DD).
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		UnprocessableEntityError("Amount must be a positive number").Write(w)
		return
	}

	date, err := core.ParseDate(r.Form.Get("date"))
	if err != nil {
		UnprocessableEntityError("Date must be in YYYY-MM-DD format").Write(w)
		return
	}

	entry := core.Transaction{
		Amount:      amount,
		Category:    sanitizeInput(r.Form.Get("category")),
		Description: sanitizeInput(r.Form.Get("description")),
		Date:        date,
		Type:        core.TxType(sanitizeInput(r.Form.Get("type"))),
	}

	saved, err := s.svc.Create(r.Context(), entry)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPersistence):
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction create failed",
				log.FieldError, err,
				log.FieldCategory, entry.Category,
				log.FieldAmountCents, entry.Amount.Cents)
			InternalServerError("Could not save the transaction").
				TriggerErrorNotification("Could not save the transaction").
				Write(w)
		default:
			UnprocessableEntityError(err.Error()).Write(w)
		}
		return
	}

	month := analytics.MonthKey(saved.Date)
	NewHTMXResponse().
		TriggerTransactionCreated(month).
		TriggerFormReset().
		TriggerSuccessNotification("Transaction recorded").
		BodyHTML(`<div class="success">Recorded: ` +
			template.HTMLEscapeString(saved.Description) +
			` (` + template.HTMLEscapeString(formatAmount(saved.Amount.Cents)) + `)</div>`).
		Write(w)
}

// handleDeleteTransaction removes a transaction by id.
// Accepts DELETE or POST with an id field (form or JSON body).
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := parser.Get("id")
	if id == "" {
		id = sanitizeInput(r.URL.Query().Get("id"))
	}
	if id == "" {
		BadRequestError("Missing transaction id").Write(w)
		return
	}

	if err := s.svc.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			NotFoundError("Transaction not found").Write(w)
		case errors.Is(err, store.ErrPersistence):
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction delete failed",
				log.FieldError, err, log.FieldTransactionID, id)
			InternalServerError("Could not delete the transaction").
				TriggerErrorNotification("Could not delete the transaction").
				Write(w)
		default:
			InternalServerError("Could not delete the transaction").Write(w)
		}
		return
	}

	NewHTMXResponse().
		TriggerTransactionDeleted(id).
		TriggerSuccessNotification("Transaction deleted").
		BodyHTML(`<div class="success">Deleted</div>`).
		Write(w)
}
