package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"wikid/pkg/api"
	"wikid/pkg/auth"
	"wikid/pkg/banner"
	"wikid/pkg/config"
	"wikid/pkg/logger"
	"wikid/pkg/maintenance"
	"wikid/pkg/search"
	"wikid/pkg/shutdown"
	"wikid/pkg/state"
	"wikid/pkg/store"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load(".env")
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])
	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(cfg.Logging.Level)

	// Flags explicitly set win over env/config for addr and dbPath.
	addr := addrVal
	if !setFlags["addr"] && (cfg.Server.Address != "" || cfg.Server.Port != 0) {
		addr = cfg.Addr()
	}
	dbPath := dbVal
	if !setFlags["db"] && cfg.Storage.DBPath != "" {
		dbPath = cfg.Storage.DBPath
	}

	if len(cfg.Auth.SigningKeys) == 0 {
		logger.Warn("no_signing_keys_configured", "msg", "sessions cannot be issued until WIKID_SIGNING_KEYS or auth.signing_keys is set")
	}
	config.SetRuntime(&config.RuntimeConfig{
		SigningKeys: cfg.Auth.SigningKeys,
		TokenTTL:    cfg.TokenTTL(),
	})

	paths, err := state.Ensure(dbPath)
	if err != nil {
		shutdown.Abort("prepare state dirs", err, dbPath)
	}
	if err := store.Open(paths.Store); err != nil {
		shutdown.Abort("open database", err, dbPath)
	}

	idx, err := search.New()
	if err != nil {
		shutdown.Abort("create search index", err, dbPath)
	}
	if err := idx.Build(); err != nil {
		shutdown.Abort("build search index", err, dbPath)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	stopMaintenance, err := maintenance.Start(ctx, idx, cfg.Search.RebuildCron)
	if err != nil {
		shutdown.Abort("start maintenance scheduler", err, dbPath)
	}
	defer stopMaintenance()

	// Config sources summary for the banner.
	srcs := []string{}
	if len(setFlags) > 0 {
		srcs = append(srcs, "flags")
	}
	if envUsed {
		srcs = append(srcs, "env")
	}
	if _, err := config.Load(cfgPath); err == nil {
		srcs = append(srcs, "config")
	}
	verStr := version
	if commit != "none" {
		verStr = verStr + " (" + commit + ")"
	}
	if buildDate != "unknown" {
		verStr = verStr + " @ " + buildDate
	}
	banner.Print(addr, dbPath, strings.Join(srcs, ", "), verStr)

	handler := api.New(idx, auth.SecConfig{
		AllowedOrigins: cfg.Security.CORS.AllowedOrigins,
		RPS:            cfg.Security.RateLimit.RPS,
		Burst:          cfg.Security.RateLimit.Burst,
		IPWhitelist:    cfg.Security.IPWhitelist,
	})

	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shctx, shcancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shcancel()
		_ = srv.Shutdown(shctx)
	}()

	logger.Info("server_starting", "addr", addr, "db", dbPath)
	cert := cfg.Server.TLS.CertFile
	key := cfg.Server.TLS.KeyFile
	var errServe error
	if cert != "" && key != "" {
		errServe = srv.ListenAndServeTLS(cert, key)
	} else {
		errServe = srv.ListenAndServe()
	}
	if errServe != nil && errServe != http.ErrServerClosed {
		shutdown.Abort("serve http", errServe, dbPath)
	}

	if err := store.Close(); err != nil {
		logger.Error("store_close_failed", "error", err)
	}
	logger.Info("server_stopped")
}
