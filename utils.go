package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/takeshi-0987/ipatlas/api"
	"github.com/takeshi-0987/ipatlas/atlaslib"
)

const shutdownTimeout = 5 * time.Second

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

func runServe(engine *atlaslib.Engine, conf *config) error {
	if conf.Listen == "" {
		return fmt.Errorf("listen address is not configured")
	}

	ctx, cancel := makeRootContext()
	defer cancel()

	srv := &http.Server{
		Addr: conf.Listen,
		Handler: api.MakeServer(engine, api.Opts{
			BasicAuthUser:     conf.BasicAuthUser,
			BasicAuthPassword: conf.BasicAuthPassword,
		}),
	}

	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.ListenAndServe()
	}()

	log.WithFields(log.Fields{
		"listen": conf.Listen,
	}).Info("HTTP server is listening.")

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
