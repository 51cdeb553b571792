// Package engine orchestrates the wallet registry, transaction ledger,
// balance oracle, and gas estimator behind the operations the HTTP API
// exposes.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Klingon-tech/walletsim/internal/gas"
	"github.com/Klingon-tech/walletsim/internal/ledger"
	klog "github.com/Klingon-tech/walletsim/internal/log"
	"github.com/Klingon-tech/walletsim/internal/oracle"
	"github.com/Klingon-tech/walletsim/internal/wallet"
)

var (
	// ErrInvalidAmount indicates a malformed or non-positive monetary input.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientFunds indicates the sender balance is below the
	// required total.
	ErrInsufficientFunds = errors.New("insufficient balance")
)

// Engine is the wallet ledger and transaction engine. All operations that
// read-check-then-write balances run under one mutex, so two concurrent
// sends can never both pass the balance check before either debits.
type Engine struct {
	mu       sync.Mutex
	registry *wallet.Registry
	ledger   *ledger.Ledger
	oracle   oracle.Oracle
}

// New creates an engine over the given collaborators.
func New(registry *wallet.Registry, led *ledger.Ledger, orc oracle.Oracle) *Engine {
	return &Engine{registry: registry, ledger: led, oracle: orc}
}

// GasQuote is the result of a gas estimation.
type GasQuote struct {
	Fee       decimal.Decimal
	PriceGwei int64
	Total     decimal.Decimal
}

// Connect registers a wallet. Existing records are returned unchanged.
func (e *Engine) Connect(address, walletType, chainID string) (*wallet.Record, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Connect(address, walletType, chainID)
}

// RefreshBalance applies oracle drift to the wallet's balance, clamps at
// zero, persists, and returns the updated record.
func (e *Engine) RefreshBalance(address string) (*wallet.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.ApplyDelta(address, e.oracle.Jitter())
}

// EstimateGas computes the simulated fee and total for sending amount of
// cryptoType at the default gas price. Pure computation, no state touched.
// A zero amount is a valid estimation input; only Send requires positivity.
func (e *Engine) EstimateGas(amount, cryptoType string) (GasQuote, error) {
	amt, err := parseDecimal(amount)
	if err != nil {
		return GasQuote{}, err
	}
	if amt.IsNegative() {
		return GasQuote{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidAmount)
	}

	fee := gas.Estimate(cryptoType, gas.DefaultPriceGwei)
	return GasQuote{
		Fee:       fee,
		PriceGwei: gas.DefaultPriceGwei,
		Total:     gas.Total(amt, fee),
	}, nil
}

// Send debits the sender by amount plus fee and appends a completed
// transaction. The sender must exist and hold at least amount+fee; a failed
// send performs no debit and appends nothing. gasFee may be empty (zero).
func (e *Engine) Send(from, to, amount, cryptoType, gasFee string) (*ledger.Transaction, decimal.Decimal, error) {
	amt, err := parseAmount(amount)
	if err != nil {
		return nil, decimal.Zero, err
	}
	fee := decimal.Zero
	if gasFee != "" {
		fee, err = parseFee(gasFee)
		if err != nil {
			return nil, decimal.Zero, err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sender, err := e.registry.FindByAddress(from)
	if err != nil {
		return nil, decimal.Zero, err
	}

	total := amt.Add(fee)
	if sender.Balance.LessThan(total) {
		klog.Engine.Debug().
			Str("from", from).
			Str("balance", sender.Balance.String()).
			Str("required", total.String()).
			Msg("send rejected")
		return nil, decimal.Zero, ErrInsufficientFunds
	}

	updated, err := e.registry.ApplyDelta(from, total.Neg())
	if err != nil {
		return nil, decimal.Zero, err
	}

	tx, err := e.ledger.Record(ledger.Draft{
		From:       from,
		To:         to,
		Amount:     amt,
		CryptoType: cryptoType,
		GasFee:     fee,
		Status:     ledger.StatusCompleted,
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return tx, updated.Balance, nil
}

// AdminSend debits the sender by amount only (the fee is forced to zero) and
// appends an admin_completed transaction. Authorization is the caller's
// responsibility; the engine assumes the gate already passed.
func (e *Engine) AdminSend(from, to, amount, cryptoType string) (*ledger.Transaction, decimal.Decimal, error) {
	amt, err := parseAmount(amount)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if cryptoType == "" {
		cryptoType = "ETH"
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sender, err := e.registry.FindByAddress(from)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if sender.Balance.LessThan(amt) {
		return nil, decimal.Zero, ErrInsufficientFunds
	}

	updated, err := e.registry.ApplyDelta(from, amt.Neg())
	if err != nil {
		return nil, decimal.Zero, err
	}

	tx, err := e.ledger.Record(ledger.Draft{
		From:           from,
		To:             to,
		Amount:         amt,
		CryptoType:     cryptoType,
		GasFee:         decimal.Zero,
		Status:         ledger.StatusAdminCompleted,
		AdminInitiated: true,
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return tx, updated.Balance, nil
}

// ListWallets returns a snapshot of all connected wallets with the aggregate
// balance at call time.
func (e *Engine) ListWallets() ([]*wallet.Record, decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.registry.ListAll()
	if err != nil {
		return nil, decimal.Zero, err
	}
	return records, wallet.TotalBalance(records), nil
}

// ListTransactions returns the ledger contents in append order.
func (e *Engine) ListTransactions() ([]*ledger.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.List()
}

// parseDecimal parses a monetary string; malformed input is rejected
// outright instead of propagating NaN through arithmetic.
func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	return d, nil
}

// parseAmount parses a transfer amount, which must be strictly greater
// than zero.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	return d, nil
}

// parseFee parses a gas fee, which may be zero but not negative.
func parseFee(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: gas fee must not be negative", ErrInvalidAmount)
	}
	return d, nil
}
