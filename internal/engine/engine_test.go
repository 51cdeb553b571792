package engine

import (
	"errors"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/Klingon-tech/walletsim/internal/ledger"
	"github.com/Klingon-tech/walletsim/internal/oracle"
	"github.com/Klingon-tech/walletsim/internal/storage"
	"github.com/Klingon-tech/walletsim/internal/wallet"
)

// newTestEngine builds an engine over in-memory storage with a fixed-draw
// oracle. The first draw feeds the first connect's initial balance.
func newTestEngine(t *testing.T, draws ...float64) (*Engine, *ledger.Ledger) {
	t.Helper()
	if len(draws) == 0 {
		draws = []float64{0.5}
	}
	i := 0
	orc := oracle.NewWithDraw(func() float64 {
		v := draws[i]
		if i < len(draws)-1 {
			i++
		}
		return v
	})

	db := storage.NewMemory()
	reg := wallet.NewRegistry(storage.NewPrefixDB(db, []byte("w/")), orc)
	led := ledger.NewLedger(storage.NewPrefixDB(db, []byte("t/")))
	return New(reg, led, orc), led
}

func TestSendDebitsAmountPlusFee(t *testing.T) {
	e, led := newTestEngine(t, 0.5) // Initial balance 5.0000.
	if _, _, err := e.Connect("0xA", "metamask", ""); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	tx, newBalance, err := e.Send("0xA", "0xB", "1", "ETH", "0.001")
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if newBalance.StringFixed(4) != "3.9990" {
		t.Errorf("newBalance = %s, want 3.9990", newBalance.StringFixed(4))
	}
	if tx.Status != ledger.StatusCompleted {
		t.Errorf("Status = %q, want %q", tx.Status, ledger.StatusCompleted)
	}
	if tx.AdminInitiated {
		t.Error("AdminInitiated = true for regular send")
	}

	txs, err := led.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("ledger holds %d transactions, want 1", len(txs))
	}
}

func TestSendInsufficientFundsHasNoEffect(t *testing.T) {
	e, led := newTestEngine(t, 0.1) // Initial balance 1.0000.
	e.Connect("0xA", "metamask", "")

	_, _, err := e.Send("0xA", "0xB", "5", "ETH", "0.001")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Send() err = %v, want ErrInsufficientFunds", err)
	}

	records, total, err := e.ListWallets()
	if err != nil || len(records) != 1 {
		t.Fatalf("ListWallets() error: %v", err)
	}
	if total.StringFixed(4) != "1.0000" {
		t.Errorf("balance changed to %s after failed send", total.StringFixed(4))
	}

	txs, _ := led.List()
	if len(txs) != 0 {
		t.Errorf("ledger holds %d transactions after failed send, want 0", len(txs))
	}
}

func TestSendExactBalanceSucceeds(t *testing.T) {
	e, _ := newTestEngine(t, 0.1) // Initial balance 1.0000.
	e.Connect("0xA", "metamask", "")

	_, newBalance, err := e.Send("0xA", "0xB", "0.999", "ETH", "0.001")
	if err != nil {
		t.Fatalf("Send() with exact balance error: %v", err)
	}
	if !newBalance.IsZero() {
		t.Errorf("newBalance = %s, want 0", newBalance)
	}
}

func TestSendUnknownSender(t *testing.T) {
	e, _ := newTestEngine(t)
	_, _, err := e.Send("0xNOPE", "0xB", "1", "ETH", "")
	if !errors.Is(err, wallet.ErrNotFound) {
		t.Errorf("Send() err = %v, want wallet.ErrNotFound", err)
	}
}

func TestSendRejectsMalformedAmounts(t *testing.T) {
	e, _ := newTestEngine(t, 0.5)
	e.Connect("0xA", "metamask", "")

	tests := []struct {
		name   string
		amount string
		gasFee string
	}{
		{"non-numeric amount", "abc", "0.001"},
		{"empty amount", "", "0.001"},
		{"negative amount", "-1", "0.001"},
		{"zero amount", "0", "0.001"},
		{"non-numeric fee", "1", "abc"},
		{"negative fee", "1", "-0.001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := e.Send("0xA", "0xB", tt.amount, "ETH", tt.gasFee); !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("Send(%q, %q) err = %v, want ErrInvalidAmount", tt.amount, tt.gasFee, err)
			}
		})
	}
}

func TestAdminSendForcesZeroFee(t *testing.T) {
	e, _ := newTestEngine(t, 0.5) // Initial balance 5.0000.
	e.Connect("0xA", "metamask", "")

	tx, newBalance, err := e.AdminSend("0xA", "0xB", "2", "")
	if err != nil {
		t.Fatalf("AdminSend() error: %v", err)
	}

	if newBalance.StringFixed(4) != "3.0000" {
		t.Errorf("newBalance = %s, want 3.0000 (amount only, no fee)", newBalance.StringFixed(4))
	}
	if !tx.GasFee.IsZero() {
		t.Errorf("GasFee = %s, want 0", tx.GasFee)
	}
	if tx.Status != ledger.StatusAdminCompleted {
		t.Errorf("Status = %q, want %q", tx.Status, ledger.StatusAdminCompleted)
	}
	if !tx.AdminInitiated {
		t.Error("AdminInitiated = false, want true")
	}
	if tx.CryptoType != "ETH" {
		t.Errorf("CryptoType = %q, want default ETH", tx.CryptoType)
	}
}

func TestRefreshBalanceNeverNegative(t *testing.T) {
	// Initial draw 0 gives balance 0; every subsequent draw 0 gives the most
	// negative jitter (-0.05). The clamp must hold the balance at zero.
	e, _ := newTestEngine(t, 0)
	e.Connect("0xA", "metamask", "")

	for i := 0; i < 20; i++ {
		rec, err := e.RefreshBalance("0xA")
		if err != nil {
			t.Fatalf("RefreshBalance() error: %v", err)
		}
		if rec.Balance.IsNegative() {
			t.Fatalf("balance went negative: %s", rec.Balance)
		}
	}
}

func TestRefreshBalanceUnknownWallet(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, err := e.RefreshBalance("0xNOPE"); !errors.Is(err, wallet.ErrNotFound) {
		t.Errorf("RefreshBalance() err = %v, want wallet.ErrNotFound", err)
	}
}

func TestEstimateGas(t *testing.T) {
	e, _ := newTestEngine(t)

	quote, err := e.EstimateGas("1.5", "ETH")
	if err != nil {
		t.Fatalf("EstimateGas() error: %v", err)
	}
	if quote.Fee.StringFixed(8) != "0.00063000" {
		t.Errorf("Fee = %s, want 0.00063000", quote.Fee.StringFixed(8))
	}
	if quote.PriceGwei != 30 {
		t.Errorf("PriceGwei = %d, want 30", quote.PriceGwei)
	}
	if quote.Total.StringFixed(8) != "1.50063000" {
		t.Errorf("Total = %s, want 1.50063000", quote.Total.StringFixed(8))
	}

	if _, err := e.EstimateGas("abc", "ETH"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("EstimateGas() with bad amount err = %v, want ErrInvalidAmount", err)
	}
}

func TestEstimateGasAcceptsZeroAmount(t *testing.T) {
	e, _ := newTestEngine(t)

	quote, err := e.EstimateGas("0", "ETH")
	if err != nil {
		t.Fatalf("EstimateGas() with zero amount error: %v", err)
	}
	if quote.Fee.StringFixed(8) != "0.00063000" {
		t.Errorf("Fee = %s, want 0.00063000", quote.Fee.StringFixed(8))
	}
	if quote.Total.StringFixed(8) != "0.00063000" {
		t.Errorf("Total = %s, want 0.00063000", quote.Total.StringFixed(8))
	}

	if _, err := e.EstimateGas("-1", "ETH"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("EstimateGas() with negative amount err = %v, want ErrInvalidAmount", err)
	}
}

func TestListWallets(t *testing.T) {
	e, _ := newTestEngine(t, 0.1, 0.2)
	e.Connect("0xA", "metamask", "")
	e.Connect("0xB", "phantom", "")

	records, total, err := e.ListWallets()
	if err != nil {
		t.Fatalf("ListWallets() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListWallets() returned %d records, want 2", len(records))
	}
	if total.StringFixed(4) != "3.0000" {
		t.Errorf("total = %s, want 3.0000", total.StringFixed(4))
	}
}

func TestConcurrentSendsCannotOverspend(t *testing.T) {
	e, led := newTestEngine(t, 0.5) // Initial balance 5.0000.
	e.Connect("0xA", "metamask", "")

	// 10 concurrent sends of 1.0 against a balance of 5.0: exactly 5 may
	// succeed.
	var g errgroup.Group
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			if _, _, err := e.Send("0xA", "0xB", "1", "ETH", ""); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	if succeeded != 5 {
		t.Errorf("%d sends succeeded, want 5", succeeded)
	}
	txs, _ := led.List()
	if len(txs) != 5 {
		t.Errorf("ledger holds %d transactions, want 5", len(txs))
	}

	records, total, err := e.ListWallets()
	if err != nil || len(records) != 1 {
		t.Fatalf("ListWallets() error: %v", err)
	}
	if !total.IsZero() {
		t.Errorf("final balance = %s, want 0", total)
	}
}
