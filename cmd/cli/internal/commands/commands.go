package commands

import (
	"github.com/gridwatt/chargectl/internal/api"
	"github.com/gridwatt/chargectl/internal/config"
	"github.com/gridwatt/chargectl/internal/session"
)

type Globals struct {
	Debug   bool
	Version string
}

// ConnectFlags are the flags every command shares for reaching the API and
// the local session store.
type ConnectFlags struct {
	Server  string `help:"API root URL (overrides config file)"`
	DataDir string `help:"Session data directory" name:"data-dir"`
	Config  string `help:"Path to config file"`
}

// bootstrap is the composition root shared by every command: config file,
// session store, and a manager owning the authenticated client.
func bootstrap(flags ConnectFlags) (*session.Manager, config.Config, error) {
	cfg, err := config.Load(flags.Config)
	if err != nil {
		return nil, cfg, err
	}
	if flags.Server != "" {
		cfg.APIURL = flags.Server
	}
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	store, err := session.NewStore(cfg.DataDir)
	if err != nil {
		return nil, cfg, err
	}

	return session.NewManager(api.Config{BaseURL: cfg.APIURL}, store), cfg, nil
}
