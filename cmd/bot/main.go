package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"statchart/internal/config"
	"statchart/internal/graph"
	"statchart/internal/openai"
	"statchart/internal/server"
	"statchart/internal/storage"
	"statchart/internal/telegram"
)

func main() {
	cfg := config.Load()
	logrus.SetLevel(cfg.LogLevel)
	graph.SetCacheTTL(cfg.CacheTTL)

	// Ensure parent directory for the DB exists
	_ = os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755)
	db, err := storage.OpenSQLite("file:" + cfg.DBPath + "?_fk=1")
	if err != nil {
		logrus.Fatal(err)
	}
	defer db.Close()
	logrus.Infof("db: opened sqlite at %s", cfg.DBPath)
	if err := storage.InitSchema(db); err != nil {
		logrus.Fatal(err)
	}
	logrus.Info("db: schema ensured (presets, renders)")

	store := storage.NewStore(db)
	builder := graph.NewBuilder(graph.NewFetcher(cfg.FetchTimeout))
	srv := server.New(builder, store, cfg.DefaultDataURL)

	var narrator *openai.Narrator
	if cfg.OpenAIKey != "" {
		narrator = openai.NewNarrator(cfg.OpenAIKey)
	}

	var webhook http.HandlerFunc
	if cfg.BotEnabled() {
		tg, err := telegram.NewBot(cfg.TelegramToken, cfg.WebhookPublicURL, telegram.Deps{
			Builder:  builder,
			Store:    store,
			Resolver: srv,
			Narrator: narrator,
			Target:   server.Target,
		})
		if err != nil {
			logrus.Fatal(err)
		}
		logrus.Infof("telegram: bot initialized, webhook target %s", cfg.WebhookPublicURL)
		webhook = tg.WebhookHandler
	} else {
		logrus.Info("telegram: no token configured, bot disabled")
	}

	mux := server.NewHTTPMux(srv, webhook)
	addr := ":" + cfg.Port
	logrus.Infof("http: listening on %s", addr)
	if err := server.ListenAndServe(addr, mux); err != nil {
		logrus.Errorf("server error: %v", err)
		os.Exit(1)
	}
}
