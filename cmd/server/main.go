package main

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/valdiviamed/snotcap/internal/api"
	"github.com/valdiviamed/snotcap/internal/config"
	"github.com/valdiviamed/snotcap/internal/db"
	"github.com/valdiviamed/snotcap/internal/middleware"
	"github.com/valdiviamed/snotcap/internal/services"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}
	if cfg.Salt == "" {
		log.Warn().Msg("SALT is not set; submissions will be rejected until it is configured")
	}

	items, err := services.LoadItems(cfg.ItemsFile)
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.ItemsFile).Msg("item catalog unavailable, serving placeholders")
	}

	local := db.NewCSVStore(cfg.DataDir, log)
	if err := local.EnsureStore(); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("prepare local store")
	}

	var audit services.AuditStore
	var auditReader api.AuditReader
	if cfg.AuditDB != "" {
		store, err := db.OpenAuditStore(cfg.AuditDB, log)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.AuditDB).Msg("audit trail disabled")
		} else {
			defer store.Close()
			audit = store
			auditReader = store
		}
	}

	var remote services.RemoteSink
	if cfg.RemoteEnabled() {
		remote = db.NewSheetsSink(cfg.GoogleCredentialsFile, cfg.GoogleSheetID, cfg.GoogleSheetWorksheet, cfg.RemoteTimeout())
		log.Info().Str("sheet", cfg.GoogleSheetID).Str("worksheet", cfg.GoogleSheetWorksheet).Msg("remote mirror enabled")
	} else {
		log.Info().Msg("remote mirror disabled, storing locally only")
	}

	svc := services.NewSubmissionService(cfg.Salt, cfg.StorePlaintextRUT, local, remote, audit, log)

	mux := http.NewServeMux()
	api.NewRouter(svc, items, local.Path(), auditReader).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":   true,
			"name": "snotcap API",
		})
	})

	handler := middleware.NoStore(middleware.RequestLog(log, mux))

	log.Info().Str("addr", cfg.Addr).Msg("server listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
