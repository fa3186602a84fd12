package commands

import (
	"context"
	"fmt"

	"github.com/gridwatt/chargectl/internal/session"
)

// SignupCmd registers a new account. It does not log the caller in.
type SignupCmd struct {
	ConnectFlags
	Username string `arg:"" help:"Account username"`
	Email    string `help:"Email address" required:""`
	Password string `help:"Account password" env:"CHARGECTL_PASSWORD" required:""`
	FullName string `help:"Full name" name:"full-name"`
	Phone    string `help:"Phone number"`
	Role     string `help:"Requested role" default:"user" enum:"user,super_admin"`
}

func (s *SignupCmd) Run(ctx context.Context, globals *Globals) error {
	mgr, _, err := bootstrap(s.ConnectFlags)
	if err != nil {
		return err
	}

	err = mgr.Signup(ctx, session.Profile{
		Username: s.Username,
		Email:    s.Email,
		Password: s.Password,
		FullName: s.FullName,
		Phone:    s.Phone,
		Role:     s.Role,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Account %s created. Log in with: chargectl login %s\n", s.Username, s.Username)
	return nil
}
