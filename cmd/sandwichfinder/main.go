// Command sandwichfinder runs the real-time sandwich-bundle detector:
// it subscribes to the block stream, decompiles and classifies swaps,
// detects adversarial-trade triplets, and fans the result out to a
// websocket hub, an in-memory history ring, and a relational store.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klingon-exchange/sandwichfinder/internal/api"
	"github.com/klingon-exchange/sandwichfinder/internal/config"
	"github.com/klingon-exchange/sandwichfinder/internal/dbwriter"
	"github.com/klingon-exchange/sandwichfinder/internal/fanout"
	"github.com/klingon-exchange/sandwichfinder/internal/ingest"
	"github.com/klingon-exchange/sandwichfinder/internal/solanarpc"
	"github.com/klingon-exchange/sandwichfinder/internal/streamclient"
	"github.com/klingon-exchange/sandwichfinder/pkg/logging"
)

const shutdownTimeout = 5 * time.Second

func main() {
	log := logging.Default()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := solanarpc.New(cfg.RPCURL)

	hub := fanout.New(log)
	go hub.Run(ctx)

	writer, err := dbwriter.New(ctx, cfg.MySQLDSN, log)
	if err != nil {
		// Persistence is best-effort and restartable; the process
		// still serves live websocket subscribers without it.
		log.Errorf("dbwriter unavailable, continuing without persistence: %v", err)
		writer = nil
	} else {
		go writer.Run(ctx)
		defer writer.Close()
	}

	dial := func() (streamclient.StreamClient, error) {
		return streamclient.Dial(cfg.GRPCURL)
	}
	loop := ingest.New(dial, fetcher, hub, writer, log)
	go loop.Run(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", cfg.APIPort),
		Handler: api.New(hub, log).Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Infof("listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("http server: %v", err)
	}
}
