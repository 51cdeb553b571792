package api

import (
	"time"

	"github.com/Klingon-tech/walletsim/internal/ledger"
	"github.com/Klingon-tech/walletsim/internal/wallet"
)

// Monetary fields travel as decimal strings: 4 fractional digits for
// balances and amounts, 8 for fees and totals.
const (
	balanceDigits = 4
	feeDigits     = 8
)

// Request bodies.

type connectRequest struct {
	Address    string `json:"address"`
	WalletType string `json:"walletType"`
	ChainID    string `json:"chainId"`
}

type balanceRequest struct {
	Address string `json:"address"`
}

type estimateGasRequest struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Amount     string `json:"amount"`
	CryptoType string `json:"cryptoType"`
}

type sendRequest struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Amount     string `json:"amount"`
	CryptoType string `json:"cryptoType"`
	GasFee     string `json:"gasFee"`
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

type adminSendRequest struct {
	FromAddress string `json:"fromAddress"`
	ToAddress   string `json:"toAddress"`
	Amount      string `json:"amount"`
	CryptoType  string `json:"cryptoType"`
}

// Response views. Wallet and transaction records are reformatted so the
// monetary fields carry fixed digit counts regardless of internal precision.

type walletView struct {
	ID           string `json:"id"`
	Address      string `json:"address"`
	WalletType   string `json:"walletType"`
	ChainID      string `json:"chainId"`
	Balance      string `json:"balance"`
	IsConnected  bool   `json:"isConnected"`
	ConnectedAt  string `json:"connectedAt"`
	LastActivity string `json:"lastActivity"`
}

func viewWallet(rec *wallet.Record) walletView {
	return walletView{
		ID:           rec.ID,
		Address:      rec.Address,
		WalletType:   rec.WalletType,
		ChainID:      rec.ChainID,
		Balance:      rec.Balance.StringFixed(balanceDigits),
		IsConnected:  rec.IsConnected,
		ConnectedAt:  rec.ConnectedAt.Format(time.RFC3339),
		LastActivity: rec.LastActivity.Format(time.RFC3339),
	}
}

func viewWallets(records []*wallet.Record) []walletView {
	views := make([]walletView, len(records))
	for i, rec := range records {
		views[i] = viewWallet(rec)
	}
	return views
}

type transactionView struct {
	ID             string `json:"id"`
	From           string `json:"from"`
	To             string `json:"to"`
	Amount         string `json:"amount"`
	CryptoType     string `json:"cryptoType"`
	GasFee         string `json:"gasFee"`
	Status         string `json:"status"`
	AdminInitiated bool   `json:"adminInitiated"`
	Timestamp      string `json:"timestamp"`
	TxHash         string `json:"txHash"`
}

func viewTransaction(tx *ledger.Transaction) transactionView {
	return transactionView{
		ID:             tx.ID,
		From:           tx.From,
		To:             tx.To,
		Amount:         tx.Amount.StringFixed(balanceDigits),
		CryptoType:     tx.CryptoType,
		GasFee:         tx.GasFee.StringFixed(feeDigits),
		Status:         tx.Status,
		AdminInitiated: tx.AdminInitiated,
		Timestamp:      tx.Timestamp.Format(time.RFC3339),
		TxHash:         tx.TxHash,
	}
}

func viewTransactions(txs []*ledger.Transaction) []transactionView {
	views := make([]transactionView, len(txs))
	for i, tx := range txs {
		views[i] = viewTransaction(tx)
	}
	return views
}
