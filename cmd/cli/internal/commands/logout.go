package commands

import (
	"context"
	"fmt"
)

// LogoutCmd clears the stored session. Server-side invalidation is
// best-effort; the local session is always cleared.
type LogoutCmd struct {
	ConnectFlags
}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	mgr, _, err := bootstrap(l.ConnectFlags)
	if err != nil {
		return err
	}

	mgr.Logout(ctx)
	fmt.Println("Logged out.")
	return nil
}
