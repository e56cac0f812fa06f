// Command tripwatch follows Toota trips from the terminal.
//
// In board mode it polls every trip visible to the configured actor and
// logs each status change as it reconciles. With -trip it tracks a
// single trip on a tighter interval. With -set it requests one status
// transition through the gateway and exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/toota/tripsync/internal/config"
	"github.com/toota/tripsync/internal/gateway"
	"github.com/toota/tripsync/internal/model"
	"github.com/toota/tripsync/internal/poll"
	"github.com/toota/tripsync/internal/store"
	"github.com/toota/tripsync/internal/tripapi"
	"github.com/toota/tripsync/pkg/token"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file (optional)")
		tripID     = flag.String("trip", "", "track a single trip by id")
		setStatus  = flag.String("set", "", "request a status transition for -trip, then exit")
		history    = flag.Bool("history", false, "print completed trips, then exit")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	access, err := resolveToken(ctx, cfg)
	if err != nil {
		slog.Error("failed to obtain access token", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client := tripapi.New(tripapi.Config{
		BaseURL:     cfg.API.BaseURL,
		Credentials: token.StaticProvider(access),
		Timeout:     cfg.API.Timeout,
		Logger:      logger,
	})
	trips := store.New()

	if *history {
		if err := printHistory(ctx, client); err != nil {
			slog.Error("failed to fetch history", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	target := poll.ListTarget()
	interval := cfg.Poll.ListInterval
	if *tripID != "" {
		target = poll.TripTarget(*tripID)
		interval = cfg.Poll.TripInterval
	}

	poller := poll.New(poll.Config{
		Target:      target,
		Fetcher:     client,
		Store:       trips,
		Interval:    interval,
		TickTimeout: cfg.API.Timeout,
		Logger:      logger,
		OnApply:     statusChangeLogger(logger),
		OnError: func(err error) {
			var se *model.SyncError
			if errors.As(err, &se) {
				logger.Warn("refresh failed", slog.String("message", se.Message()))
			}
		},
	})

	if *setStatus != "" {
		if err := runTransition(ctx, cfg, access, trips, client, poller, *tripID, *setStatus, logger); err != nil {
			os.Exit(1)
		}
		return
	}

	poller.Start()
	slog.Info("watching trips",
		slog.String("base_url", cfg.API.BaseURL),
		slog.String("role", string(cfg.Role())),
		slog.Duration("interval", interval),
	)

	<-ctx.Done()
	slog.Info("shutting down")
	poller.Stop()
}

// resolveToken prefers a configured token and falls back to the login
// endpoint. Tokens are never written anywhere by this process.
func resolveToken(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.Auth.AccessToken != "" {
		return cfg.Auth.AccessToken, nil
	}
	login := tripapi.New(tripapi.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout})
	return login.Login(ctx, cfg.Role(), cfg.Auth.Email, cfg.Auth.Password)
}

// runTransition performs one gateway request: refresh the snapshot,
// validate, mutate, reconcile.
func runTransition(ctx context.Context, cfg *config.Config, access string, trips *store.Store, client *tripapi.Client, poller *poll.Poller, tripID, rawStatus string, logger *slog.Logger) error {
	if tripID == "" {
		logger.Error("-set requires -trip")
		return fmt.Errorf("missing trip id")
	}
	status, err := model.ParseStatus(rawStatus)
	if err != nil {
		logger.Error("invalid -set value", slog.String("error", err.Error()))
		return err
	}

	// Seed the store with current server state before validating.
	if err := poller.RunOnce(ctx); err != nil {
		logger.Error("failed to fetch current trip state", slog.String("error", err.Error()))
		return err
	}

	gw := gateway.New(gateway.Config{
		Store:     trips,
		Mutator:   client,
		Refresher: poller,
		Logger:    logger,
		ActorID:   actorID(cfg, access),
	})

	updated, err := gw.Request(ctx, tripID, status, cfg.Role())
	if err != nil {
		msg := err.Error()
		var se *model.SyncError
		if errors.As(err, &se) {
			msg = se.Message()
		}
		logger.Error("transition rejected",
			slog.String("trip_id", tripID),
			slog.String("target_status", rawStatus),
			slog.String("message", msg),
		)
		return err
	}

	logger.Info("transition applied",
		slog.String("trip_id", updated.ID),
		slog.String("status", string(updated.Status)),
	)
	return nil
}

func printHistory(ctx context.Context, client *tripapi.Client) error {
	completed, err := client.ListCompleted(ctx)
	if err != nil {
		return err
	}
	for _, t := range completed {
		fmt.Printf("%s  %s -> %s  R%.2f  %s\n",
			t.ID, t.Pickup.Label, t.Dropoff.Label, t.Bid, t.PickupTime.Format("2006-01-02 15:04"))
	}
	if len(completed) == 0 {
		fmt.Println("no completed trips")
	}
	return nil
}

// statusChangeLogger logs a line whenever a trip's status moves.
func statusChangeLogger(logger *slog.Logger) func(model.Trip) {
	var mu sync.Mutex
	seen := make(map[string]model.Status)

	return func(t model.Trip) {
		mu.Lock()
		prev, ok := seen[t.ID]
		seen[t.ID] = t.Status
		mu.Unlock()

		if ok && prev == t.Status {
			return
		}
		attrs := []any{
			slog.String("trip_id", t.ID),
			slog.String("status", string(t.Status)),
			slog.String("pickup", t.Pickup.Label),
			slog.String("message", t.Status.Message()),
		}
		if t.Driver != nil {
			attrs = append(attrs, slog.String("driver", t.Driver.FullName))
		}
		if !ok {
			logger.Info("trip observed", attrs...)
			return
		}
		logger.Info("trip status changed", append(attrs, slog.String("previous", string(prev)))...)
	}
}

// actorID scopes the driver-exclusivity guard to the authenticated
// driver when the token carries an id.
func actorID(cfg *config.Config, access string) string {
	if cfg.Role() != model.RoleDriver {
		return ""
	}
	claims, err := token.Decode(access)
	if err != nil {
		return ""
	}
	return claims.UserID
}
