package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
)

// WhoamiCmd resumes the stored session and prints the identity profile.
type WhoamiCmd struct {
	ConnectFlags
}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	mgr, _, err := bootstrap(w.ConnectFlags)
	if err != nil {
		return err
	}

	if err := mgr.Resume(ctx); err != nil {
		return fmt.Errorf("no active session: %w", err)
	}

	user := mgr.CurrentUser()
	if user == nil {
		return fmt.Errorf("no active session")
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Username:\t%s\n", user.Username)
	fmt.Fprintf(tw, "Email:\t%s\n", user.Email)
	if user.FullName != "" {
		fmt.Fprintf(tw, "Name:\t%s\n", user.FullName)
	}
	fmt.Fprintf(tw, "Role:\t%s\n", mgr.CurrentRole())
	return tw.Flush()
}
