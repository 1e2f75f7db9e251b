package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-ledger/internal/card"
	"card-ledger/internal/domain"
	"card-ledger/internal/errors"
	"card-ledger/internal/money"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedAccount(t *testing.T, store *memStore, name, cardNumber, balance string) *domain.Account {
	t.Helper()
	account := &domain.Account{
		ID:         uuid.New(),
		Name:       name,
		Email:      name + "@example.com",
		CardNumber: cardNumber,
		Balance:    money.MustFromString(balance),
	}
	require.NoError(t, store.CreateAccount(account))
	return account
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// sumOfEntries recomputes the balance an account should hold from its log.
func sumOfEntries(t *testing.T, store *memStore, accountID uuid.UUID) money.Money {
	t.Helper()
	entries, err := store.EntriesForAccount(accountID)
	require.NoError(t, err)

	total := money.Zero()
	for _, entry := range entries {
		total = total.Add(entry.Amount)
	}
	return total
}

func TestDeposit(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	acct := seedAccount(t, store, "Jake", "4000000000000006", "0.00")

	account, entry, err := svc.Deposit(acct.ID, money.MustFromString("25.50"))
	require.NoError(t, err)

	assert.Equal(t, "25.50", account.Balance.String())
	assert.Equal(t, "25.50", entry.Amount.String())
	assert.Equal(t, "ATM Deposit", entry.Counterparty)
	assert.Equal(t, "25.50", entry.ResultingBalance.String())

	stored, err := store.GetAccount(acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.50", stored.Balance.String())
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	acct := seedAccount(t, store, "Jake", "4000000000000006", "10.00")

	for _, amount := range []string{"0.00", "-5.00"} {
		_, _, err := svc.Deposit(acct.ID, money.MustFromString(amount))
		assertCode(t, err, errors.InvalidAmount)
	}

	entries, err := store.EntriesForAccount(acct.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithdraw(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	acct := seedAccount(t, store, "Jake", "4000000000000006", "70.00")

	account, entry, err := svc.Withdraw(acct.ID, money.MustFromString("20.00"))
	require.NoError(t, err)

	assert.Equal(t, "50.00", account.Balance.String())
	assert.Equal(t, "-20.00", entry.Amount.String())
	assert.Equal(t, "ATM Withdraw", entry.Counterparty)
	assert.Equal(t, "50.00", entry.ResultingBalance.String())
}

func TestWithdrawInsufficientBalanceLeavesStateUntouched(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	acct := seedAccount(t, store, "Jake", "4000000000000006", "70.00")

	_, _, err := svc.Withdraw(acct.ID, money.MustFromString("1000.00"))
	assertCode(t, err, errors.InsufficientBalance)

	stored, err := store.GetAccount(acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "70.00", stored.Balance.String())

	entries, err := store.EntriesForAccount(acct.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithdrawExactBalanceSucceeds(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	acct := seedAccount(t, store, "Jake", "4000000000000006", "70.00")

	account, _, err := svc.Withdraw(acct.ID, money.MustFromString("70.00"))
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
}

func TestBalanceAlwaysEqualsSumOfEntries(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	acct := seedAccount(t, store, "Jake", "4000000000000006", "0.00")

	steps := []struct {
		op     string
		amount string
	}{
		{"deposit", "100.00"},
		{"withdraw", "30.50"},
		{"deposit", "0.01"},
		{"withdraw", "69.51"},
		{"deposit", "12.34"},
	}

	for _, step := range steps {
		amount := money.MustFromString(step.amount)
		var err error
		if step.op == "deposit" {
			_, _, err = svc.Deposit(acct.ID, amount)
		} else {
			_, _, err = svc.Withdraw(acct.ID, amount)
		}
		require.NoError(t, err)

		stored, err := store.GetAccount(acct.ID)
		require.NoError(t, err)
		assert.True(t, stored.Balance.Equal(sumOfEntries(t, store, acct.ID)),
			"balance %s diverged from entry sum after %s %s", stored.Balance, step.op, step.amount)
	}
}

func TestSendScenario(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	sender := seedAccount(t, store, "Alice", "4000000000000006", "100.00")
	payee := seedAccount(t, store, "Bob", "4000000000000015", "50.00")

	result, err := svc.Send(sender.ID, money.MustFromString("30.00"), payee.CardNumber)
	require.NoError(t, err)

	assert.Equal(t, "70.00", result.Payer.Balance.String())
	assert.Equal(t, "80.00", result.Payee.Balance.String())

	assert.Equal(t, "-30.00", result.PayerEntry.Amount.String())
	assert.Equal(t, "Bob", result.PayerEntry.Counterparty)
	assert.Equal(t, "70.00", result.PayerEntry.ResultingBalance.String())

	assert.Equal(t, "30.00", result.PayeeEntry.Amount.String())
	assert.Equal(t, "Alice", result.PayeeEntry.Counterparty)
	assert.Equal(t, "80.00", result.PayeeEntry.ResultingBalance.String())

	// Both entries share one logical timestamp.
	assert.True(t, result.PayerEntry.CreatedAt.Equal(result.PayeeEntry.CreatedAt))
}

func TestTransferEntriesAreExactNegatives(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	sender := seedAccount(t, store, "Alice", "4000000000000006", "40.10")
	payee := seedAccount(t, store, "Bob", "4000000000000015", "1.23")

	result, err := svc.Send(sender.ID, money.MustFromString("0.10"), payee.CardNumber)
	require.NoError(t, err)

	assert.True(t, result.PayerEntry.Amount.Equal(result.PayeeEntry.Amount.Neg()))

	// The transfer conserves the combined balance.
	combined := result.Payer.Balance.Add(result.Payee.Balance)
	assert.Equal(t, "41.33", combined.String())
}

func TestChargeScenario(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	shop := seedAccount(t, store, "Shop", "4000000000000006", "10.00")
	customer := seedAccount(t, store, "Customer", "4000000000000015", "50.00")

	result, err := svc.Charge(shop.ID, money.MustFromString("19.99"), customer.CardNumber)
	require.NoError(t, err)

	// The card's owner pays; the charging account collects.
	assert.Equal(t, customer.ID, result.Payer.ID)
	assert.Equal(t, shop.ID, result.Payee.ID)
	assert.Equal(t, "30.01", result.Payer.Balance.String())
	assert.Equal(t, "29.99", result.Payee.Balance.String())
	assert.Equal(t, "Shop", result.PayerEntry.Counterparty)
	assert.Equal(t, "Customer", result.PayeeEntry.Counterparty)
}

func TestChargeUnknownCard(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	shop := seedAccount(t, store, "Shop", "4000000000000006", "10.00")

	_, err := svc.Charge(shop.ID, money.MustFromString("5.00"), "4999999999999990")
	assertCode(t, err, errors.AccountNotFound)
}

func TestChargeInsufficientPayerBalance(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	shop := seedAccount(t, store, "Shop", "4000000000000006", "10.00")
	customer := seedAccount(t, store, "Customer", "4000000000000015", "5.00")

	_, err := svc.Charge(shop.ID, money.MustFromString("5.01"), customer.CardNumber)
	assertCode(t, err, errors.InsufficientBalance)

	// Neither side moved and no entries were written.
	storedShop, _ := store.GetAccount(shop.ID)
	storedCustomer, _ := store.GetAccount(customer.ID)
	assert.Equal(t, "10.00", storedShop.Balance.String())
	assert.Equal(t, "5.00", storedCustomer.Balance.String())
	assert.Empty(t, store.entries)
}

func TestSendErrorPrecedence(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	sender := seedAccount(t, store, "Alice", "4000000000000006", "10.00")

	// Invalid amount wins over a nonexistent recipient card.
	_, err := svc.Send(sender.ID, money.MustFromString("-5.00"), "4999999999999990")
	assertCode(t, err, errors.InvalidAmount)

	// Insufficient balance is checked before the recipient lookup.
	_, err = svc.Send(sender.ID, money.MustFromString("100.00"), "4999999999999990")
	assertCode(t, err, errors.InsufficientBalance)

	// With sufficient funds the missing recipient surfaces.
	_, err = svc.Send(sender.ID, money.MustFromString("5.00"), "4999999999999990")
	assertCode(t, err, errors.AccountNotFound)
}

func TestChargeErrorPrecedence(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	shop := seedAccount(t, store, "Shop", "4000000000000006", "0.00")

	// Invalid amount wins over a nonexistent payer card.
	_, err := svc.Charge(shop.ID, money.MustFromString("0.00"), "4999999999999990")
	assertCode(t, err, errors.InvalidAmount)

	// Unlike Send, the payer lookup precedes the balance check.
	_, err = svc.Charge(shop.ID, money.MustFromString("100.00"), "4999999999999990")
	assertCode(t, err, errors.AccountNotFound)
}

func TestTransferToSelfRejected(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	acct := seedAccount(t, store, "Alice", "4000000000000006", "50.00")

	_, err := svc.Send(acct.ID, money.MustFromString("5.00"), acct.CardNumber)
	assertCode(t, err, errors.InvalidInput)

	_, err = svc.Charge(acct.ID, money.MustFromString("5.00"), acct.CardNumber)
	assertCode(t, err, errors.InvalidInput)

	stored, _ := store.GetAccount(acct.ID)
	assert.Equal(t, "50.00", stored.Balance.String())
	assert.Empty(t, store.entries)
}

func TestFailedSendLeavesNoPartialState(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	sender := seedAccount(t, store, "Alice", "4000000000000006", "100.00")
	payee := seedAccount(t, store, "Bob", "4000000000000015", "50.00")

	_, err := svc.Send(sender.ID, money.MustFromString("100.01"), payee.CardNumber)
	assertCode(t, err, errors.InsufficientBalance)

	storedSender, _ := store.GetAccount(sender.ID)
	storedPayee, _ := store.GetAccount(payee.ID)
	assert.Equal(t, "100.00", storedSender.Balance.String())
	assert.Equal(t, "50.00", storedPayee.Balance.String())
	assert.Empty(t, store.entries)
}

func TestUpdateCard(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	acct := seedAccount(t, store, "Jake", "4000000000000006", "70.00")

	newCard, err := card.Generate("4", 16, nil)
	require.NoError(t, err)

	account, err := svc.UpdateCard(acct.ID, newCard)
	require.NoError(t, err)
	assert.Equal(t, newCard, account.CardNumber)

	// No balance effect and no ledger entry.
	assert.Equal(t, "70.00", account.Balance.String())
	assert.Empty(t, store.entries)
}

func TestUpdateCardRejectsBadChecksum(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	acct := seedAccount(t, store, "Jake", "4000000000000006", "70.00")

	_, err := svc.UpdateCard(acct.ID, "4000000000000003")
	assertCode(t, err, errors.InvalidInput)
}

func TestUpdateCardRejectsTakenNumber(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	acct := seedAccount(t, store, "Jake", "4000000000000006", "70.00")
	other := seedAccount(t, store, "Ishai", "4000000000000015", "0.00")

	_, err := svc.UpdateCard(acct.ID, other.CardNumber)
	assertCode(t, err, errors.DuplicateCard)
}

func TestEntriesFor(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())
	acct := seedAccount(t, store, "Jake", "4000000000000006", "0.00")

	_, _, err := svc.Deposit(acct.ID, money.MustFromString("10.00"))
	require.NoError(t, err)
	_, _, err = svc.Withdraw(acct.ID, money.MustFromString("4.00"))
	require.NoError(t, err)

	entries, err := svc.EntriesFor(acct.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "10.00", entries[0].Amount.String())
	assert.Equal(t, "-4.00", entries[1].Amount.String())

	_, err = svc.EntriesFor(uuid.New())
	assertCode(t, err, errors.AccountNotFound)
}

func TestATMOperationsOnUnknownAccount(t *testing.T) {
	store := newMemStore()
	svc := NewLedgerService(store, testLogger())

	_, _, err := svc.Deposit(uuid.New(), money.MustFromString("10.00"))
	assertCode(t, err, errors.AccountNotFound)

	_, _, err = svc.Withdraw(uuid.New(), money.MustFromString("10.00"))
	assertCode(t, err, errors.AccountNotFound)
}
