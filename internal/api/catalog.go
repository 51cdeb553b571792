package api

import "net/http"

// CatalogEntry describes a wallet provider users can pick from. The catalog
// is static; connecting any of these produces the same simulated record.
type CatalogEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// walletCatalog lists the supported wallet providers.
var walletCatalog = []CatalogEntry{
	{ID: "metamask", Name: "MetaMask", Type: "extension"},
	{ID: "trustwallet", Name: "Trust Wallet", Type: "mobile"},
	{ID: "coinbase", Name: "Coinbase Wallet", Type: "mobile"},
	{ID: "walletconnect", Name: "WalletConnect", Type: "qr"},
	{ID: "phantom", Name: "Phantom", Type: "extension"},
	{ID: "ledger", Name: "Ledger Live", Type: "hardware"},
	{ID: "trezor", Name: "Trezor", Type: "hardware"},
	{ID: "brave", Name: "Brave Wallet", Type: "browser"},
	{ID: "exodus", Name: "Exodus", Type: "desktop"},
	{ID: "atomic", Name: "Atomic Wallet", Type: "desktop"},
	{ID: "myetherwallet", Name: "MyEtherWallet", Type: "web"},
	{ID: "argent", Name: "Argent", Type: "mobile"},
	{ID: "rainbow", Name: "Rainbow", Type: "mobile"},
	{ID: "mathwallet", Name: "Math Wallet", Type: "mobile"},
	{ID: "tokenpocket", Name: "TokenPocket", Type: "mobile"},
	{ID: "safepal", Name: "SafePal", Type: "hardware"},
	{ID: "bitkeep", Name: "BitKeep", Type: "extension"},
	{ID: "zenGo", Name: "ZenGo", Type: "mobile"},
	{ID: "alpha", Name: "Alpha Wallet", Type: "mobile"},
	{ID: "crypto.com", Name: "Crypto.com DeFi Wallet", Type: "mobile"},
	{ID: "1inch", Name: "1inch Wallet", Type: "mobile"},
	{ID: "binance", Name: "Binance Chain Wallet", Type: "extension"},
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"wallets": walletCatalog,
	})
}
