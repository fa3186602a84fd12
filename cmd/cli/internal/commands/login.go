package commands

import (
	"context"
	"fmt"

	"github.com/gridwatt/chargectl/internal/session"
)

// LoginCmd exchanges credentials and stores the resulting session.
type LoginCmd struct {
	ConnectFlags
	Username string `arg:"" help:"Account username"`
	Password string `help:"Account password" env:"CHARGECTL_PASSWORD" required:""`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	mgr, _, err := bootstrap(l.ConnectFlags)
	if err != nil {
		return err
	}

	role, err := mgr.Login(ctx, l.Username, l.Password)
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (%s)\n", l.Username, role)

	if role == session.RoleSuperAdmin {
		fmt.Println("Admin commands are available: charge-points, watch")
	}

	return nil
}
