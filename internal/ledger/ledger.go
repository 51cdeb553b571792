// Package ledger records executed simulated transactions as an append-only
// audit trail. There are no update or delete operations.
package ledger

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zeebo/blake3"

	klog "github.com/Klingon-tech/walletsim/internal/log"
	"github.com/Klingon-tech/walletsim/internal/storage"
)

// Transaction status values. Every transaction is created directly in a
// terminal state; there is no pending/in-flight state since no real
// settlement occurs.
const (
	StatusCompleted      = "completed"
	StatusAdminCompleted = "admin_completed"
)

// Transaction is one executed simulated transfer. Immutable once appended.
type Transaction struct {
	ID             string          `json:"id"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	Amount         decimal.Decimal `json:"amount"`
	CryptoType     string          `json:"cryptoType"`
	GasFee         decimal.Decimal `json:"gasFee"`
	Status         string          `json:"status"`
	AdminInitiated bool            `json:"adminInitiated"`
	Timestamp      time.Time       `json:"timestamp"`
	TxHash         string          `json:"txHash"`
}

// Draft carries the caller-supplied fields of a transaction about to be
// recorded. The ledger assigns ID, hash, and timestamp.
type Draft struct {
	From           string
	To             string
	Amount         decimal.Decimal
	CryptoType     string
	GasFee         decimal.Decimal
	Status         string
	AdminInitiated bool
}

// Key layout:
//
//	Entry: "e/<seq8>" → JSON Transaction (seq big-endian, so key order is append order)
//	Meta:  "m"        → JSON ledgerMeta
type ledgerMeta struct {
	NextSeq uint64 `json:"next_seq"`
}

// Ledger owns the append-only sequence of executed transactions.
type Ledger struct {
	db storage.DB
}

// NewLedger creates a ledger backed by db.
func NewLedger(db storage.DB) *Ledger {
	return &Ledger{db: db}
}

// Record assigns an ID, hash, and timestamp to the draft, appends it, and
// returns the stored transaction.
func (l *Ledger) Record(draft Draft) (*Transaction, error) {
	meta, err := l.getMeta()
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		ID:             uuid.NewString(),
		From:           draft.From,
		To:             draft.To,
		Amount:         draft.Amount,
		CryptoType:     draft.CryptoType,
		GasFee:         draft.GasFee,
		Status:         draft.Status,
		AdminInitiated: draft.AdminInitiated,
		Timestamp:      time.Now().UTC(),
		TxHash:         newTxHash(),
	}

	data, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction: %w", err)
	}
	if err := l.db.Put(entryKey(meta.NextSeq), data); err != nil {
		return nil, fmt.Errorf("ledger append: %w", err)
	}

	meta.NextSeq++
	if err := l.setMeta(meta); err != nil {
		return nil, err
	}

	klog.Ledger.Info().
		Str("tx_hash", tx.TxHash).
		Str("from", tx.From).
		Str("to", tx.To).
		Str("status", tx.Status).
		Msg("transaction recorded")
	return tx, nil
}

// List returns all transactions in append order.
func (l *Ledger) List() ([]*Transaction, error) {
	type entry struct {
		seq uint64
		tx  *Transaction
	}
	var entries []entry

	err := l.db.ForEach([]byte("e/"), func(key, value []byte) error {
		if len(key) < 10 {
			return fmt.Errorf("malformed ledger key %q", key)
		}
		var tx Transaction
		if err := json.Unmarshal(value, &tx); err != nil {
			return fmt.Errorf("corrupt transaction: %w", err)
		}
		entries = append(entries, entry{seq: binary.BigEndian.Uint64(key[2:10]), tx: &tx})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The memory backend iterates unordered, so sort by sequence.
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	txs := make([]*Transaction, len(entries))
	for i, e := range entries {
		txs[i] = e.tx
	}
	return txs, nil
}

// Count returns the number of recorded transactions.
func (l *Ledger) Count() (uint64, error) {
	meta, err := l.getMeta()
	if err != nil {
		return 0, err
	}
	return meta.NextSeq, nil
}

func entryKey(seq uint64) []byte {
	key := make([]byte, 10)
	copy(key, "e/")
	binary.BigEndian.PutUint64(key[2:], seq)
	return key
}

var metaKey = []byte("m")

func (l *Ledger) getMeta() (ledgerMeta, error) {
	ok, err := l.db.Has(metaKey)
	if err != nil {
		return ledgerMeta{}, fmt.Errorf("ledger meta: %w", err)
	}
	if !ok {
		return ledgerMeta{}, nil // Fresh ledger.
	}
	data, err := l.db.Get(metaKey)
	if err != nil {
		return ledgerMeta{}, fmt.Errorf("ledger meta: %w", err)
	}
	var meta ledgerMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return ledgerMeta{}, fmt.Errorf("corrupt ledger meta: %w", err)
	}
	return meta, nil
}

func (l *Ledger) setMeta(meta ledgerMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if err := l.db.Put(metaKey, data); err != nil {
		return fmt.Errorf("ledger meta put: %w", err)
	}
	return nil
}

// newTxHash derives an opaque transaction identifier from the current
// nanosecond timestamp plus random bytes.
func newTxHash() string {
	var seed [16]byte
	binary.BigEndian.PutUint64(seed[:8], uint64(time.Now().UnixNano()))
	rand.Read(seed[8:])

	sum := blake3.Sum256(seed[:])
	return "0x" + hex.EncodeToString(sum[:16])
}
