package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/gridwatt/chargectl/internal/api"
	"github.com/gridwatt/chargectl/internal/session"
)

// ChargeSession is the listing shape returned by the sessions endpoint.
type ChargeSession struct {
	ID      int     `json:"id"`
	CP      string  `json:"cp"`
	User    string  `json:"user"`
	KWh     float64 `json:"kWh"`
	Started string  `json:"Started"`
	Ended   string  `json:"Ended"`
}

// WatchCmd polls charging sessions, staying authenticated through the
// proactive token renewal timer for as long as it runs.
type WatchCmd struct {
	ConnectFlags
	Interval time.Duration `help:"Poll interval" default:"10s"`
}

func (w *WatchCmd) Run(ctx context.Context, globals *Globals) error {
	mgr, _, err := bootstrap(w.ConnectFlags)
	if err != nil {
		return err
	}

	if err := mgr.Resume(ctx); err != nil {
		return fmt.Errorf("not logged in: %w", err)
	}

	fmt.Println("Watching charging sessions (press Ctrl+C to stop)...")

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	if err := w.poll(ctx, mgr); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.poll(ctx, mgr); err != nil {
				return err
			}
		}
	}
}

// poll fetches the session list, retrying transient failures with
// exponential backoff. Authorization failures are permanent here: the
// manager already gets one renewal attempt per request, so a second
// rejection means the session is gone.
func (w *WatchCmd) poll(ctx context.Context, mgr *session.Manager) error {
	sessions, err := backoff.Retry(ctx, func() ([]ChargeSession, error) {
		var out []ChargeSession
		if err := mgr.Client().Get(ctx, "/sessions/", &out); err != nil {
			if api.IsUnauthorized(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return out, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(5))
	if err != nil {
		return fmt.Errorf("failed to fetch sessions: %w", err)
	}

	fmt.Printf("%s  %d active session(s)\n", time.Now().Format("15:04:05"), len(sessions))
	for _, s := range sessions {
		ended := s.Ended
		if ended == "" {
			ended = "-"
		}
		fmt.Printf("  #%d  cp=%s user=%s kWh=%.2f started=%s ended=%s\n",
			s.ID, s.CP, s.User, s.KWh, s.Started, ended)
	}
	return nil
}
