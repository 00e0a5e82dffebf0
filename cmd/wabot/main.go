// Command wabot runs the Jummai WhatsApp business assistant: a Twilio
// webhook server backed by a pluggable record store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/jummai/wabot/core/bootstrap"
	"github.com/jummai/wabot/core/buildinfo"
	"github.com/jummai/wabot/core/chat"
	"github.com/jummai/wabot/core/cmd"
	coreconfig "github.com/jummai/wabot/core/config"
	"github.com/jummai/wabot/core/httpserver"
	"github.com/jummai/wabot/core/logger"
	"github.com/jummai/wabot/core/store"
	"github.com/jummai/wabot/core/whatsapp"
	"github.com/jummai/wabot/core/whatsapp/sender"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Printf("wabot %s (%s %s)\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
		return
	}

	if err := cmd.Run(cmd.Options{Build: build}); err != nil {
		log.Fatalf("wabot: %v", err)
	}
}

func build(cfg *coreconfig.Config) (cmd.App, error) {
	res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}

	client := whatsapp.NewClient(whatsapp.Config{
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		From:       cfg.Twilio.From,
		BaseURL:    cfg.Twilio.BaseURL,
	})
	disp := sender.NewDispatcher(sender.Options{
		Redact: []string{cfg.Twilio.AuthToken},
	})
	outbox := sender.NewOutbox(client, disp)

	controller := chat.NewController(res.Store)

	listen := cfg.HTTP.Listen
	if listen == "" {
		listen = fmt.Sprintf(":%d", cfg.HTTP.Port)
	}
	srv := httpserver.New(httpserver.Options{
		Handler:     controller,
		Sender:      outbox,
		Stats:       res.Store,
		ApologyText: chat.ApologyReply(),
		Listen:      listen,
	})

	logger.L.With("component", "app").Info("build complete",
		slog.String("event", "build"),
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
		slog.String("store", cfg.Store.Driver),
		slog.String("listen", listen),
	)

	return &app{srv: srv, outbox: outbox, store: res.Store}, nil
}

type app struct {
	srv    *httpserver.Server
	outbox *sender.Outbox
	store  store.Store
}

// Run serves until ctx is cancelled, then drains the outbound queue and
// closes the store.
func (a *app) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.srv.Shutdown(shutdownCtx)

	a.outbox.Close()
	if cerr := a.store.Close(); err == nil {
		err = cerr
	}
	return err
}
