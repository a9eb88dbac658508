package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fmuoria/CV-Assessment-agent/internal/api"
	"github.com/fmuoria/CV-Assessment-agent/internal/automation"
	"github.com/fmuoria/CV-Assessment-agent/internal/config"
	"github.com/fmuoria/CV-Assessment-agent/internal/gui"
	"github.com/fmuoria/CV-Assessment-agent/internal/ingestion"
	"github.com/fmuoria/CV-Assessment-agent/internal/llm"
	"github.com/fmuoria/CV-Assessment-agent/internal/sandbox"
	"github.com/fmuoria/CV-Assessment-agent/internal/wizard"
)

func main() {
	desktop := flag.Bool("gui", false, "run the desktop application instead of the HTTP server")
	verbose := flag.Bool("verbose", false, "log every generation step")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		cfg = config.DefaultConfig()
		cfg.ApplyEnv()
	}
	cfg.ApplyToEnv()
	wizard.SetVerbose(*verbose || cfg.Verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Document parsers load in the background; uploads fail with ProviderNotReady until then
	registry := ingestion.DefaultRegistry()
	registry.LoadAll(ctx)

	generator, err := llm.New(ctx, cfg.LLMSettings())
	if err != nil {
		log.Printf("Generation is unavailable: %v", err)
	} else {
		defer generator.Close()
	}

	deps := wizard.Dependencies{
		Extractor: ingestion.NewExtractor(registry),
		Generator: generator,
		Runner:    sandbox.NewRunner(cfg.SandboxTimeout()),
		Notifier:  automation.NewClient(cfg.AutomationWebhookURL, 0),
		Options:   cfg.GenerationOptions(),
	}

	if *desktop {
		gui.NewApp(cfg, deps).Run()
		return
	}

	store := wizard.NewStore(deps, cfg.SessionTTL())

	files := ingestion.NewFileHandler(cfg.UploadsDir, cfg.MaxUploadBytes(), cfg.KeepUploads)
	if cfg.KeepUploads {
		// Kept copies live as long as some session does
		store.OnIdle(func() {
			if err := files.ClearUploads(); err != nil {
				log.Printf("Failed to clear uploads: %v", err)
			}
		})
	}
	go store.RunSweeper(ctx, time.Minute)
	server := api.NewServer(store, files, registry, cfg.SessionSecret)

	if cfg.GmailCredentialsPath != "" {
		gmail, err := ingestion.NewGmailSource(ctx, cfg.GmailCredentialsPath, cfg.GmailTokenPath)
		if err != nil {
			log.Printf("Gmail is unavailable: %v", err)
		} else {
			server.SetGmailSource(gmail)
		}
	}

	fmt.Printf("Starting CV Assessment Agent on port %s (provider %s)...\n", cfg.Port, cfg.LLMProvider)
	fmt.Printf("Endpoints:\n")
	fmt.Printf("  POST /wizard?variant=quiz|challenge - Start a session\n")
	fmt.Printf("  POST /wizard/upload - Upload a CV\n")
	fmt.Printf("  GET /wizard - Session state\n")

	if err := http.ListenAndServe(":"+cfg.Port, server.Router()); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
