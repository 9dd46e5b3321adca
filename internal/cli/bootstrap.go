// Package cli provides CLI commands for the court application.
package cli

import (
	gocontext "context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/court/internal/config"
	"github.com/example/court/internal/ctxutil"
	"github.com/example/court/internal/logging"
	"github.com/example/court/internal/wire"
)

// ActorEnv names the acting user when --as is not given.
const ActorEnv = "COURT_ACTOR"

// globalActorID stores the acting user for the current CLI invocation.
// Set once at startup by Bootstrap.
var globalActorID int64

var (
	configPath string
	actorFlag  string
)

// AddGlobalFlags registers the flags every command accepts.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default .court/config.json)")
	root.PersistentFlags().StringVar(&actorFlag, "as", "", "Platform user id to act as (default $"+ActorEnv+")")
}

// Bootstrap loads configuration, builds the logger and resolves the acting
// user. It runs in the root command's PersistentPreRunE.
func Bootstrap(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, _, err := config.Load(wd, configPath, os.Environ())
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	wire.Configure(cfg, logger)

	actor, err := resolveActor(actorFlag, os.Getenv(ActorEnv))
	if err != nil {
		return err
	}
	globalActorID = actor
	return nil
}

// resolveActor prefers the flag over the environment. Empty means the
// system actor.
func resolveActor(flag, env string) (int64, error) {
	v := flag
	if v == "" {
		v = env
	}
	if v == "" {
		return 0, nil
	}
	id, err := parseID(v, "actor")
	if err != nil {
		return 0, fmt.Errorf("%w (from --as or %s)", err, ActorEnv)
	}
	return id, nil
}

// GetActorID returns the acting user resolved at startup.
func GetActorID() int64 {
	return globalActorID
}

// NewContext creates a context.Background() with the acting user embedded.
// CLI commands should use this instead of context.Background() directly.
func NewContext() gocontext.Context {
	ctx := gocontext.Background()
	if globalActorID != 0 {
		return ctxutil.WithActorID(ctx, globalActorID)
	}
	return ctx
}
