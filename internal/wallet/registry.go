// Package wallet tracks connected wallet records and their simulated
// balances.
package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	klog "github.com/Klingon-tech/walletsim/internal/log"
	"github.com/Klingon-tech/walletsim/internal/oracle"
	"github.com/Klingon-tech/walletsim/internal/storage"
)

var (
	// ErrMissingField indicates a required connect field was absent.
	ErrMissingField = errors.New("missing required field")
	// ErrNotFound indicates no wallet record exists for the address.
	ErrNotFound = errors.New("wallet not found")
)

// balancePrecision is the number of fractional digits kept on balances.
const balancePrecision = 4

// DefaultChainID is assumed when a connect request omits the chain.
const DefaultChainID = "0x1"

// Record is a simulated account entry tracking an address's connection state
// and balance. Balances never go negative; mutations clamp at zero.
type Record struct {
	ID           string          `json:"id"`
	Address      string          `json:"address"`
	WalletType   string          `json:"walletType"`
	ChainID      string          `json:"chainId"`
	Balance      decimal.Decimal `json:"balance"`
	IsConnected  bool            `json:"isConnected"`
	ConnectedAt  time.Time       `json:"connectedAt"`
	LastActivity time.Time       `json:"lastActivity"`
}

// Registry owns the set of connected wallet records, keyed by address.
// There is at most one record per address. Records are stored as JSON in the
// backing database.
type Registry struct {
	db     storage.DB
	oracle oracle.Oracle
}

// NewRegistry creates a registry backed by db. Initial balances for new
// records are drawn from orc.
func NewRegistry(db storage.DB, orc oracle.Oracle) *Registry {
	return &Registry{db: db, oracle: orc}
}

// Connect registers a wallet for address. If a record already exists it is
// returned unchanged (connect is idempotent: balance and activity time are
// not reset) and existed is true. A new record gets a fresh ID, the default
// chain when chainID is empty, and an oracle-drawn initial balance.
func (r *Registry) Connect(address, walletType, chainID string) (rec *Record, existed bool, err error) {
	if address == "" || walletType == "" {
		return nil, false, ErrMissingField
	}

	rec, err = r.FindByAddress(address)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	if chainID == "" {
		chainID = DefaultChainID
	}

	now := time.Now().UTC()
	rec = &Record{
		ID:           uuid.NewString(),
		Address:      address,
		WalletType:   walletType,
		ChainID:      chainID,
		Balance:      r.oracle.InitialBalance(),
		IsConnected:  true,
		ConnectedAt:  now,
		LastActivity: now,
	}
	if err := r.put(rec); err != nil {
		return nil, false, err
	}

	klog.Wallet.Info().
		Str("address", address).
		Str("wallet_type", walletType).
		Str("balance", rec.Balance.StringFixed(balancePrecision)).
		Msg("wallet connected")
	return rec, false, nil
}

// FindByAddress looks up a record without mutating it.
func (r *Registry) FindByAddress(address string) (*Record, error) {
	ok, err := r.db.Has([]byte(address))
	if err != nil {
		return nil, fmt.Errorf("wallet lookup: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	data, err := r.db.Get([]byte(address))
	if err != nil {
		return nil, fmt.Errorf("wallet get: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt wallet record: %w", err)
	}
	return &rec, nil
}

// ApplyDelta adds delta to the wallet's balance, clamping the result at zero,
// and updates the last-activity timestamp. The stored balance keeps 4
// fractional digits.
func (r *Registry) ApplyDelta(address string, delta decimal.Decimal) (*Record, error) {
	rec, err := r.FindByAddress(address)
	if err != nil {
		return nil, err
	}

	balance := rec.Balance.Add(delta).Round(balancePrecision)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	rec.Balance = balance
	rec.LastActivity = time.Now().UTC()

	if err := r.put(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListAll returns a snapshot of every record, ordered by connection time.
func (r *Registry) ListAll() ([]*Record, error) {
	var records []*Record
	err := r.db.ForEach(nil, func(_, value []byte) error {
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("corrupt wallet record: %w", err)
		}
		records = append(records, &rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].ConnectedAt.Equal(records[j].ConnectedAt) {
			return records[i].ConnectedAt.Before(records[j].ConnectedAt)
		}
		return records[i].Address < records[j].Address
	})
	return records, nil
}

// TotalBalance sums the balances of the given records.
func TotalBalance(records []*Record) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Balance)
	}
	return total
}

func (r *Registry) put(rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal wallet record: %w", err)
	}
	if err := r.db.Put([]byte(rec.Address), data); err != nil {
		return fmt.Errorf("wallet put: %w", err)
	}
	return nil
}
