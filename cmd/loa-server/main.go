package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/httpapi"
	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/loacheck"
	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/store"
	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/telemetry"
	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/vision"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":8080", "Listen address")
	dbPath := flag.String("db", "loa-validator.db", "SQLite database path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "loa-validator")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		_ = shutdownTracing(shutdownCtx)
	}()

	runs, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer runs.Close()

	var extractor loacheck.SignatureDateExtractor
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		caller, err := vision.NewAnthropicCallerFromEnv()
		if err != nil {
			log.Fatalf("vision setup: %v", err)
		}
		extractor = loacheck.NewVisionDateExtractor(vision.NewExecutor(caller))
		log.Printf("vision date extraction enabled")
	} else {
		log.Printf("ANTHROPIC_API_KEY not set, signature dates come from OCR fields only")
	}

	pipeline := loacheck.NewPipeline(extractor)
	handler := httpapi.NewServer(pipeline, runs)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, c := context.WithTimeout(context.Background(), 10*time.Second)
		defer c()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("loa-server listening on %s (db=%s)", *addr, *dbPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
