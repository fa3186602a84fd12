package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/gridwatt/chargectl/internal/api"
	"github.com/gridwatt/chargectl/internal/session"
)

// ChargePoint is the listing shape returned by the charge-points endpoint.
type ChargePoint struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ConnectorID int    `json:"connectorId"`
	Status      string `json:"status"`
}

// ChargePointsCmd lists charge points. Administration data is restricted
// to super admins.
type ChargePointsCmd struct {
	ConnectFlags
	NoCache bool `help:"Bypass the response cache" default:"false"`
}

func (c *ChargePointsCmd) Run(ctx context.Context, globals *Globals) error {
	mgr, cfg, err := bootstrap(c.ConnectFlags)
	if err != nil {
		return err
	}

	if err := mgr.Resume(ctx); err != nil {
		return fmt.Errorf("not logged in: %w", err)
	}

	guard := session.NewGuard(mgr, "/login")
	decision := guard.CanEnter([]session.Role{session.RoleSuperAdmin}, "/user")
	if decision.Verdict != session.VerdictAllow {
		return fmt.Errorf("charge point administration requires the super_admin role")
	}

	client := mgr.Client()
	if !c.NoCache {
		cacheDir := ""
		if cfg.DataDir != "" {
			cacheDir = filepath.Join(cfg.DataDir, "cache")
		}
		client = api.NewWithHTTPClient(
			api.Config{BaseURL: cfg.APIURL},
			mgr,
			api.NewCachingHTTPClient(cacheDir),
		)
	}

	var chargePoints []ChargePoint
	if err := client.Get(ctx, "/charge-points/", &chargePoints); err != nil {
		return fmt.Errorf("failed to list charge points: %w", err)
	}

	if len(chargePoints) == 0 {
		fmt.Println("No charge points found.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCONNECTOR\tSTATUS")
	for _, cp := range chargePoints {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", cp.ID, cp.Name, cp.ConnectorID, cp.Status)
	}
	return tw.Flush()
}
