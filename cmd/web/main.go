package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/anantafoods/storefront/internal/accounts"
	"github.com/anantafoods/storefront/internal/catalog"
	"github.com/anantafoods/storefront/internal/checkout"
	"github.com/anantafoods/storefront/internal/config"
	"github.com/anantafoods/storefront/internal/httpx"
	kafkax "github.com/anantafoods/storefront/internal/kafka"
	"github.com/anantafoods/storefront/internal/notify"
	"github.com/anantafoods/storefront/internal/orders"
	"github.com/anantafoods/storefront/internal/postgres"
	"github.com/anantafoods/storefront/internal/redisx"
	"github.com/anantafoods/storefront/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("schema")
	}

	// Redis session store
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	sessions := session.NewStore(rdb, cfg.SessionTTL)

	// Notification channels, each behind its own enable flag.
	var prod *kafkax.Producer
	dispatcher := &notify.Dispatcher{Service: cfg.ServiceName, Log: log}
	if cfg.EnableFanout {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, cfg.OrderTopic, 1024, log)
		prod.Start(ctx)
		dispatcher.Producer = prod
	}
	if cfg.EnableEmail {
		dispatcher.Mailer = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SenderEmail)
	}

	// Repos & handlers
	ledger := &orders.Ledger{DB: db}
	router := httpx.NewRouter(httpx.Sessions(sessions, log))
	h := &httpx.Handlers{
		Accounts: &accounts.Repo{DB: db},
		Catalog:  catalog.Default(),
		Checkout: &checkout.Service{Ledger: ledger, Notifier: dispatcher, Log: log},
		Orders:   ledger,
		Sessions: sessions,
		Render:   httpx.JSONRenderer{},
		Log:      log,
	}
	h.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close()      // close inbox -> flush & close writer
		prod.WaitClosed() // drain before the producer loop's ctx goes away
	}
}
