// Package api implements the JSON-over-HTTP wallet API server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Klingon-tech/walletsim/config"
	"github.com/Klingon-tech/walletsim/internal/auth"
	"github.com/Klingon-tech/walletsim/internal/engine"
	klog "github.com/Klingon-tech/walletsim/internal/log"
	"github.com/Klingon-tech/walletsim/internal/wallet"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// Server is the wallet API HTTP server.
type Server struct {
	addr        string
	engine      *engine.Engine
	gate        *auth.Gate
	server      *http.Server
	logger      zerolog.Logger
	ln          net.Listener
	allowedNets []*net.IPNet // Empty = allow all.
	corsOrigins []string     // Empty = no CORS headers.
}

// New creates a new API server. cfg controls the listen address, IP
// filtering, and CORS.
func New(cfg config.HTTPConfig, eng *engine.Engine, gate *auth.Gate) *Server {
	s := &Server{
		addr:        fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port),
		engine:      eng,
		gate:        gate,
		logger:      klog.API,
		allowedNets: parseAllowedIPs(cfg.AllowedIPs),
		corsOrigins: cfg.CORSOrigins,
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/connect", s.handleConnect).Methods(http.MethodPost)
	r.HandleFunc("/api/balance", s.handleBalance).Methods(http.MethodPost)
	r.HandleFunc("/api/estimate-gas", s.handleEstimateGas).Methods(http.MethodPost)
	r.HandleFunc("/api/send", s.handleSend).Methods(http.MethodPost)
	r.HandleFunc("/api/wallets", s.handleCatalog).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/login", s.handleAdminLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/wallets", s.requireAdmin(s.handleAdminWallets)).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/send", s.requireAdmin(s.handleAdminSend)).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/transactions", s.requireAdmin(s.handleAdminTransactions)).Methods(http.MethodGet)
	// Router middleware only runs on matched routes, so preflight requests
	// need a route of their own; accessControl answers them before this
	// no-op handler is reached.
	r.PathPrefix("/api/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	r.Use(s.accessControl)

	s.server = &http.Server{
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// parseAllowedIPs converts string IP/CIDR entries into net.IPNet.
func parseAllowedIPs(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		_, ipNet, err := net.ParseCIDR(entry)
		if err == nil {
			nets = append(nets, ipNet)
			continue
		}
		// Try as a single IP (add /32 or /128).
		ip := net.ParseIP(entry)
		if ip == nil {
			continue
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// Start begins listening and serving in a background goroutine.
// It returns immediately after the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("API server error")
		}
	}()

	s.logger.Info().Str("addr", s.Addr()).Msg("API server listening")
	return nil
}

// Addr returns the listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// accessControl applies IP filtering and CORS to every request.
func (s *Server) accessControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.allowedNets) > 0 {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			ip := net.ParseIP(host)
			if ip == nil || !s.isIPAllowed(ip) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		next.ServeHTTP(w, r)
	})
}

// isIPAllowed checks if the IP is in the allowed networks list.
func (s *Server) isIPAllowed(ip net.IP) bool {
	for _, n := range s.allowedNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// setCORSHeaders adds CORS headers based on the configured origins.
func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if len(s.corsOrigins) == 0 {
		return
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}

	allowed := false
	for _, o := range s.corsOrigins {
		if o == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			allowed = true
			break
		}
		if o == origin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			allowed = true
			break
		}
	}

	if allowed {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	}
}

// requireAdmin rejects requests whose Authorization header does not carry a
// valid admin session token. The wrapped handler never runs on failure, so
// unauthorized requests have no side effects.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.gate.Authorize(r.Header.Get("Authorization")); err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	rec, existed, err := s.engine.Connect(req.Address, req.WalletType, req.ChainID)
	if err != nil {
		if errors.Is(err, wallet.ErrMissingField) {
			writeError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		s.internalError(w, err)
		return
	}

	message := "Wallet connected successfully"
	if existed {
		message = "Wallet already connected"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
		"wallet":  viewWallet(rec),
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	rec, err := s.engine.RefreshBalance(req.Address)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Wallet not found")
			return
		}
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"balance": rec.Balance.StringFixed(balanceDigits),
		"address": rec.Address,
	})
}

func (s *Server) handleEstimateGas(w http.ResponseWriter, r *http.Request) {
	var req estimateGasRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	quote, err := s.engine.EstimateGas(req.Amount, req.CryptoType)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidAmount) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"gasFee":   quote.Fee.StringFixed(feeDigits),
		"gasPrice": fmt.Sprintf("%d gwei", quote.PriceGwei),
		"total":    quote.Total.StringFixed(feeDigits),
	})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	tx, newBalance, err := s.engine.Send(req.From, req.To, req.Amount, req.CryptoType, req.GasFee)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrNotFound):
			writeError(w, http.StatusNotFound, "Sender wallet not found")
		case errors.Is(err, engine.ErrInsufficientFunds):
			writeError(w, http.StatusBadRequest, "Insufficient balance")
		case errors.Is(err, engine.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.internalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Transaction sent successfully",
		"transaction": viewTransaction(tx),
		"newBalance":  newBalance.StringFixed(balanceDigits),
	})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	token, expiry, err := s.gate.Login(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid password")
			return
		}
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Admin login successful",
		"token":     token,
		"expiresAt": expiry.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAdminWallets(w http.ResponseWriter, r *http.Request) {
	records, total, err := s.engine.ListWallets()
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"wallets":        viewWallets(records),
		"totalConnected": len(records),
		"totalBalance":   total.StringFixed(balanceDigits),
	})
}

func (s *Server) handleAdminSend(w http.ResponseWriter, r *http.Request) {
	var req adminSendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	tx, newBalance, err := s.engine.AdminSend(req.FromAddress, req.ToAddress, req.Amount, req.CryptoType)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrNotFound):
			writeError(w, http.StatusNotFound, "Wallet not found")
		case errors.Is(err, engine.ErrInsufficientFunds):
			writeError(w, http.StatusBadRequest, "Insufficient balance")
		case errors.Is(err, engine.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.internalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Admin transaction completed",
		"transaction": viewTransaction(tx),
		"newBalance":  newBalance.StringFixed(balanceDigits),
	})
}

func (s *Server) handleAdminTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.engine.ListTransactions()
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"transactions": viewTransactions(txs),
	})
}

// decodeJSON parses the request body into target, writing a 400 response on
// failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return err
	}
	return nil
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError writes an {"error": ...} response with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
