// Package daemon provides a fully-wired simulator instance that can be
// embedded in any binary.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Klingon-tech/walletsim/config"
	"github.com/Klingon-tech/walletsim/internal/api"
	"github.com/Klingon-tech/walletsim/internal/auth"
	"github.com/Klingon-tech/walletsim/internal/engine"
	"github.com/Klingon-tech/walletsim/internal/ledger"
	wlog "github.com/Klingon-tech/walletsim/internal/log"
	"github.com/Klingon-tech/walletsim/internal/oracle"
	"github.com/Klingon-tech/walletsim/internal/storage"
	"github.com/Klingon-tech/walletsim/internal/wallet"
	"github.com/rs/zerolog"
)

// Key prefixes carving the wallet registry and the transaction ledger
// out of the shared store.
var (
	walletPrefix = []byte("w/")
	ledgerPrefix = []byte("t/")
)

// Daemon is a fully-initialized wallet simulator.
type Daemon struct {
	cfg    *config.Config
	logger zerolog.Logger

	db     storage.DB
	engine *engine.Engine
	gate   *auth.Gate
	api    *api.Server
}

// New creates and initializes a Daemon. It performs all setup steps
// (logger, storage, oracle, engine, auth, API server) but does not
// listen yet. Call Start() for that.
func New(cfg *config.Config) (*Daemon, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" && cfg.Storage.Backend == config.BackendBadger {
		logsDir := filepath.Join(cfg.DataDir, "logs")
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = filepath.Join(logsDir, "walletsim.log")
	}
	if err := wlog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := wlog.WithComponent("daemon")

	logger.Info().
		Str("backend", cfg.Storage.Backend).
		Int64("seed", cfg.Oracle.Seed).
		Msg("Starting wallet simulator")

	// ── 2. Open storage ─────────────────────────────────────────────
	var db storage.DB
	var err error
	switch cfg.Storage.Backend {
	case config.BackendBadger:
		dir := cfg.StorageDir()
		db, err = storage.NewBadger(dir)
		if err != nil {
			return nil, fmt.Errorf("open database at %s: %w", dir, err)
		}
		logger.Info().Str("path", dir).Msg("Database opened")
	default:
		db = storage.NewMemory()
		logger.Info().Msg("Using in-memory store; state is lost on exit")
	}

	// ── 3. Oracle, registry, ledger ─────────────────────────────────
	orc := oracle.NewSimulated(cfg.Oracle.Seed)
	registry := wallet.NewRegistry(storage.NewPrefixDB(db, walletPrefix), orc)
	led := ledger.NewLedger(storage.NewPrefixDB(db, ledgerPrefix))

	// ── 4. Admin gate ───────────────────────────────────────────────
	gate, err := auth.NewGate(cfg.Admin.Password, time.Duration(cfg.Admin.TokenTTLMinutes)*time.Minute)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create admin gate: %w", err)
	}
	if cfg.Admin.Password == config.DefaultAdminPassword {
		logger.Warn().Msg("Admin password is the built-in default; set WALLETSIM_ADMIN_PASSWORD")
	}

	// ── 5. Engine and API server ────────────────────────────────────
	eng := engine.New(registry, led, orc)
	srv := api.New(cfg.HTTP, eng, gate)

	return &Daemon{
		cfg:    cfg,
		logger: logger,
		db:     db,
		engine: eng,
		gate:   gate,
		api:    srv,
	}, nil
}

// Start begins serving the HTTP API.
func (d *Daemon) Start() error {
	if err := d.api.Start(); err != nil {
		return fmt.Errorf("start API server: %w", err)
	}
	return nil
}

// Addr returns the API server's listen address, valid after Start.
func (d *Daemon) Addr() string {
	return d.api.Addr()
}

// Engine exposes the wallet engine for embedding binaries.
func (d *Daemon) Engine() *engine.Engine {
	return d.engine
}

// Stop shuts down the API server and closes storage.
func (d *Daemon) Stop() {
	if err := d.api.Stop(); err != nil {
		d.logger.Error().Err(err).Msg("API server shutdown")
	}
	if err := d.db.Close(); err != nil {
		d.logger.Error().Err(err).Msg("closing database")
	}
	d.logger.Info().Msg("Wallet simulator stopped")
}
