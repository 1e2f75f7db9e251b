package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"card-ledger/internal/auth"
	"card-ledger/internal/domain"
	"card-ledger/internal/errors"
	"card-ledger/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
	ledgerService  *service.LedgerService
	tokens         *auth.TokenManager
}

func NewAccountHandler(accountService *service.AccountService, ledgerService *service.LedgerService, tokens *auth.TokenManager) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		ledgerService:  ledgerService,
		tokens:         tokens,
	}
}

type CreateAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AccountResponse struct {
	AccountID  string    `json:"account_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CardNumber string    `json:"card_number"`
	Balance    string    `json:"balance"`
	CreatedAt  time.Time `json:"created_at"`
}

func newAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:  account.ID.String(),
		Name:       account.Name,
		Email:      account.Email,
		CardNumber: account.CardNumber,
		Balance:    account.Balance.String(),
		CreatedAt:  account.CreatedAt,
	}
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	account, err := h.accountService.Create(req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := accountIDVar(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	account, err := h.accountService.GetAccount(accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

type EntryResponse struct {
	ID               string    `json:"id"`
	Amount           string    `json:"amount"`
	Counterparty     string    `json:"counterparty"`
	ResultingBalance string    `json:"resulting_balance"`
	CreatedAt        time.Time `json:"created_at"`
}

func newEntryResponse(entry *domain.Entry) EntryResponse {
	return EntryResponse{
		ID:               entry.ID.String(),
		Amount:           entry.Amount.String(),
		Counterparty:     entry.Counterparty,
		ResultingBalance: entry.ResultingBalance.String(),
		CreatedAt:        entry.CreatedAt,
	}
}

func (h *AccountHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := accountIDVar(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	entries, err := h.ledgerService.EntriesFor(accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	responses := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, newEntryResponse(&entries[i]))
	}

	writeJSON(w, http.StatusOK, responses)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	account, err := h.accountService.Authenticate(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := h.tokens.Generate(account)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InternalError, "failed to issue token").WithDetails(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:   token,
		Account: newAccountResponse(account),
	})
}

type ChangePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := authenticatedAccount(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	if err := h.accountService.ChangePassword(accountID, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}
