package handler

import (
	"encoding/json"
	"net/http"

	"card-ledger/internal/errors"
	"card-ledger/internal/money"
	"card-ledger/internal/service"
)

type LedgerHandler struct {
	ledgerService *service.LedgerService
}

func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

type AmountRequest struct {
	Amount string `json:"amount"`
}

type BalanceChangeResponse struct {
	AccountID string        `json:"account_id"`
	Balance   string        `json:"balance"`
	Entry     EntryResponse `json:"entry"`
}

// parseAmount turns the wire amount into Money, rejecting anything that
// is not an exact two-decimal value.
func parseAmount(raw string) (money.Money, *errors.AppError) {
	amount, err := money.FromString(raw)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return money.Money{}, appErr
		}
		return money.Money{}, errors.NewAppError(errors.InvalidAmount, "invalid amount format")
	}
	return amount, nil
}

func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.handleATMOperation(w, r, h.ledgerService.Deposit)
}

func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.handleATMOperation(w, r, h.ledgerService.Withdraw)
}

func (h *LedgerHandler) handleATMOperation(w http.ResponseWriter, r *http.Request, op service.ATMOperation) {
	accountID, appErr := accountIDVar(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	authID, appErr := authenticatedAccount(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	if authID != accountID {
		writeError(w, errors.NewAppError(errors.InvalidCredentials, "token does not match account"))
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	amount, appErr := parseAmount(req.Amount)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	account, entry, err := op(accountID, amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceChangeResponse{
		AccountID: account.ID.String(),
		Balance:   account.Balance.String(),
		Entry:     newEntryResponse(entry),
	})
}

type SendRequest struct {
	Amount    string `json:"amount"`
	PayeeCard string `json:"payee_card"`
}

type ChargeRequest struct {
	Amount    string `json:"amount"`
	PayerCard string `json:"payer_card"`
}

type TransferResponse struct {
	Amount     string        `json:"amount"`
	PayerID    string        `json:"payer_id"`
	PayeeID    string        `json:"payee_id"`
	PayerEntry EntryResponse `json:"payer_entry"`
	PayeeEntry EntryResponse `json:"payee_entry"`
}

func newTransferResponse(amount money.Money, result *service.TransferResult) TransferResponse {
	return TransferResponse{
		Amount:     amount.String(),
		PayerID:    result.Payer.ID.String(),
		PayeeID:    result.Payee.ID.String(),
		PayerEntry: newEntryResponse(result.PayerEntry),
		PayeeEntry: newEntryResponse(result.PayeeEntry),
	}
}

// Send moves funds from the authenticated account to the card's owner.
func (h *LedgerHandler) Send(w http.ResponseWriter, r *http.Request) {
	senderID, appErr := authenticatedAccount(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	amount, appErr := parseAmount(req.Amount)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	result, err := h.ledgerService.Send(senderID, amount, req.PayeeCard)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTransferResponse(amount, result))
}

// Charge pulls funds from the card's owner into the authenticated
// account.
func (h *LedgerHandler) Charge(w http.ResponseWriter, r *http.Request) {
	payeeID, appErr := authenticatedAccount(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var req ChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	amount, appErr := parseAmount(req.Amount)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	result, err := h.ledgerService.Charge(payeeID, amount, req.PayerCard)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTransferResponse(amount, result))
}

type UpdateCardRequest struct {
	CardNumber string `json:"card_number"`
}

func (h *LedgerHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := accountIDVar(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	authID, appErr := authenticatedAccount(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	if authID != accountID {
		writeError(w, errors.NewAppError(errors.InvalidCredentials, "token does not match account"))
		return
	}

	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	account, err := h.ledgerService.UpdateCard(accountID, req.CardNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}
