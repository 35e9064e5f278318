// ksqlgateway exposes an executor over HTTP.
//
//	POST /v1/query   {"source": "...", "statement": "...", "metadataRetrieved": false}
//	GET  /v1/tables
//	GET  /healthz
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	ksql "github.com/fbiengine/goksql"
)

func main() {
	var (
		listenAddr = flag.String("listen", ":8080", "address to listen on")
		dsn        = flag.String("dsn", os.Getenv("GOKSQL_DSN"), "engine DSN")
		connection = flag.String("connection", "", "connection name in connections.toml, used when -dsn is empty")
		logLevel   = flag.String("log-level", "info", "log level")
		jwtSecret  = flag.String("jwt-secret", os.Getenv("GOKSQL_GATEWAY_JWT_SECRET"), "HS256 secret required from clients, empty disables authentication")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if err := ksql.SetLogger(ksql.NewLogrusLogger(log)); err != nil {
		log.Fatalf("failed to install logger: %v", err)
	}
	if err := ksql.GetLogger().SetLogLevel(*logLevel); err != nil {
		log.Fatalf("invalid log level %v: %v", *logLevel, err)
	}

	var (
		cfg *ksql.Config
		err error
	)
	if *dsn != "" {
		cfg, err = ksql.ParseDSN(*dsn)
	} else {
		cfg, err = ksql.LoadNamedConnectionConfig(*connection)
	}
	if err != nil {
		log.Fatalf("failed to load the connection config: %v", err)
	}
	exec, err := ksql.NewExecutor(cfg)
	if err != nil {
		log.Fatalf("failed to create the executor: %v", err)
	}

	srv := &http.Server{
		Addr:              *listenAddr,
		Handler:           newRouter(exec, []byte(*jwtSecret)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("ksqlgateway listening on %v, engine %v", *listenAddr, cfg.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
