package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
)

func main() {
	var (
		configPath string
		port       string
		provider   string
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML config file (or PATTERNFIND_CONFIG)")
	flag.StringVar(&port, "port", "", "Listen port (overrides PORT)")
	flag.StringVar(&provider, "summarizer", "", "Summarizer backend: gemini, openai or none")
	flag.Parse()

	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if port != "" {
		cfg.Port = port
	}
	if provider != "" {
		cfg.Summarizer.Provider = provider
		if err := cfg.Validate(); err != nil {
			log.Fatalf("config: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summarizer, err := newSummarizer(ctx, cfg.Summarizer)
	if err != nil {
		log.Fatalf("summarizer: %v", err)
	}
	if summarizer == nil {
		log.Println("no summarizer configured, explanations disabled")
	} else {
		log.Printf("summarizer enabled (%T)", summarizer)
	}

	srv := NewServer(cfg, NewStore(), summarizer)
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("server listening on http://localhost:%s", cfg.Port)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
