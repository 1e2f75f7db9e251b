package service

import (
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"card-ledger/internal/card"
	"card-ledger/internal/credential"
	"card-ledger/internal/domain"
	"card-ledger/internal/errors"
	"card-ledger/internal/money"
)

const minPasswordLength = 8

// CardIssuer carries the issuing parameters for newly generated card
// numbers.
type CardIssuer struct {
	Prefix string
	Length int
}

// DefaultCardIssuer matches the common 16-digit Visa-style format.
var DefaultCardIssuer = CardIssuer{Prefix: "4", Length: 16}

// AccountService owns account creation, lookup and credential flows.
// Balance mutation lives in LedgerService.
type AccountService struct {
	store  domain.Store
	hasher credential.Hasher
	issuer CardIssuer
	logger *slog.Logger
}

func NewAccountService(store domain.Store, hasher credential.Hasher, issuer CardIssuer, logger *slog.Logger) *AccountService {
	if issuer.Length == 0 {
		issuer = DefaultCardIssuer
	}
	return &AccountService{
		store:  store,
		hasher: hasher,
		issuer: issuer,
		logger: logger,
	}
}

// Create opens a new account with a zero balance and a freshly generated
// unique card number. The password is hashed before anything is stored.
func (s *AccountService) Create(name, email, password string) (*domain.Account, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, errors.NewAppError(errors.InvalidInput, "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errors.NewAppError(errors.InvalidInput, "invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, errors.NewAppErrorf(errors.InvalidInput, "password must be at least %d characters", minPasswordLength)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to hash password").WithDetails(err.Error())
	}

	cardNumber, err := s.generateCardNumber()
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CardNumber:   cardNumber,
		Balance:      money.Zero(),
	}

	if err := s.store.Accounts().CreateAccount(account); err != nil {
		return nil, err
	}

	s.logger.Info("Account created", "account_id", account.ID, "name", account.Name)
	return account, nil
}

// generateCardNumber samples card numbers until one is not assigned to
// any existing account. The predicate races with concurrent creation;
// the unique constraint on card_number is the final arbiter.
func (s *AccountService) generateCardNumber() (string, error) {
	available := func(candidate string) bool {
		inUse, err := s.store.Accounts().CardInUse(candidate)
		return err == nil && !inUse
	}
	return card.Generate(s.issuer.Prefix, s.issuer.Length, available)
}

// Authenticate verifies an owner's credentials. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AccountService) Authenticate(email, password string) (*domain.Account, error) {
	account, err := s.store.Accounts().GetAccountByEmail(strings.TrimSpace(email))
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		s.logger.Warn("Failed login attempt", "account_id", account.ID)
		return nil, errors.ErrInvalidCredentials
	}

	return account, nil
}

// ChangePassword replaces the stored hash. The old password has already
// been checked by the caller's authentication flow.
func (s *AccountService) ChangePassword(accountID uuid.UUID, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return errors.NewAppErrorf(errors.InvalidInput, "password must be at least %d characters", minPasswordLength)
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to hash password").WithDetails(err.Error())
	}

	if err := s.store.Accounts().UpdateAccountPassword(accountID, passwordHash); err != nil {
		return err
	}

	s.logger.Info("Password changed", "account_id", accountID)
	return nil
}

// GetAccount looks up an account by its internal identifier.
func (s *AccountService) GetAccount(accountID uuid.UUID) (*domain.Account, error) {
	return s.store.Accounts().GetAccount(accountID)
}

// GetAccountByCard looks up an account by its public card number.
func (s *AccountService) GetAccountByCard(cardNumber string) (*domain.Account, error) {
	return s.store.Accounts().GetAccountByCard(cardNumber)
}
