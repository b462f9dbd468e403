// Command apsisd runs the apsis content-addressed storage node: an HTTP
// surface over a local block store, a DHT-backed peer resolver, and a
// background announcer.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/apsisnet/apsis/internal/announce"
	"github.com/apsisnet/apsis/internal/api"
	"github.com/apsisnet/apsis/internal/config"
	"github.com/apsisnet/apsis/internal/dht"
	"github.com/apsisnet/apsis/internal/policy"
	"github.com/apsisnet/apsis/internal/resolver"
	"github.com/apsisnet/apsis/internal/store"
)

func main() {
	var configPath string
	var verbosity int

	root := &cobra.Command{
		Use:   "apsisd",
		Short: "run the apsis storage node",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, configPath, verbosity)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	root.Flags().String("bind", "", "bind address (host:port or a unix socket path)")
	root.Flags().String("advertise", "", "address announced to the DHT")
	root.Flags().String("auth-token", "", "bearer token required on R2N")
	root.Flags().String("db-path", "", "block store directory")
	root.Flags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("apsisd exited")
	}
}

func run(cmd *cobra.Command, configPath string, verbosity int) error {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbosity > 0 {
		cfg.Verbosity = verbosity
	}

	log := logrus.New()
	log.SetLevel(levelFor(cfg.Verbosity))
	entry := logrus.NewEntry(log)

	db, err := store.Open(cfg.DBPath, entry)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	advertise, err := netip.ParseAddrPort(cfg.Advertise)
	if err != nil {
		return fmt.Errorf("parse advertise address %q: %w", cfg.Advertise, err)
	}

	self := selfPeerID(advertise)
	table := dht.NewTable(self)
	tracker := announce.NewTracker()
	announcer := announce.New(table, tracker, advertise, entry)

	res := resolver.New(db, table, nil, entry)
	srv := api.New(db, res.Resolve, announcer, policy.SizeThreshold, cfg.AuthToken, entry)

	listener, err := listen(cfg.Bind)
	if err != nil {
		return fmt.Errorf("listen on %q: %w", cfg.Bind, err)
	}

	httpServer := &http.Server{Handler: srv}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		entry.WithField("addr", listener.Addr()).Info("listening")
		serveErr <- httpServer.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		entry.Info("shutting down")
		tracker.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			entry.WithError(err).Warn("http shutdown")
		}
		tracker.Wait()
	}
	return nil
}

// shutdownGrace bounds how long in-flight HTTP handlers are given to
// finish before the process exits.
const shutdownGrace = 10 * time.Second

// listen binds cfg.Bind as TCP if it parses as host:port, falling back to
// a Unix domain socket at that filesystem path otherwise.
func listen(bind string) (net.Listener, error) {
	if _, _, err := net.SplitHostPort(bind); err == nil {
		return net.Listen("tcp", bind)
	}
	return net.Listen("unix", bind)
}

// selfPeerID derives a stable local peer ID from the advertised address,
// used only as the identifier passed to dht.NewTable.
func selfPeerID(addr netip.AddrPort) (id [20]byte) {
	b := addr.Addr().As16()
	copy(id[:16], b[:])
	port := strconv.Itoa(int(addr.Port()))
	copy(id[16:], port)
	return id
}

func levelFor(verbosity int) logrus.Level {
	switch {
	case verbosity >= 2:
		return logrus.TraceLevel
	case verbosity == 1:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}
