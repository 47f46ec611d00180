package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/devapi"
	applog "storefront/internal/log"
)

func main() {
	cfgFile := flag.String("config", "", "config file; watched for latency changes")
	quiet := flag.Bool("quiet", false, "disable the per-request access log")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Fatal(err)
	}

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	srv, err := devapi.New(cfg.DevAPI, devapi.Options{Quiet: *quiet})
	if err != nil {
		log.Fatal(err)
	}

	if *cfgFile != "" {
		w, err := config.Watch(*cfgFile)
		if err != nil {
			log.Fatal(err)
		}
		w.Subscribe(func(next config.Config) {
			srv.SetLatency(next.DevAPI.Latency)
			applog.Audit(nil, "devapi.latency.reload", map[string]any{"latency": next.DevAPI.Latency.String()})
		})
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Printf("[devapi] shutting down")
		_ = srv.Shutdown()
	}()

	log.Printf("[devapi] listening on %s (seed password %q)", cfg.DevAPI.Addr, devapi.SeedPassword)
	if err := srv.Listen(cfg.DevAPI.Addr); err != nil {
		log.Fatal(err)
	}
}
