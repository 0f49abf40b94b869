package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/fakeapi"
)

func newFakeServerCmd(a *app) *cobra.Command {
	var (
		addr     string
		seedFile string
		noSeed   bool
	)

	cmd := &cobra.Command{
		Use:   "fake-server",
		Short: "Run an in-memory platform API for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.FakeServer
			if addr != "" {
				cfg.Addr = addr
			}

			platform := fakeapi.NewPlatform()
			if cfg.Seed && !noSeed {
				fixture := fakeapi.DefaultFixture()
				if seedFile != "" {
					loaded, err := fakeapi.LoadFixture(seedFile)
					if err != nil {
						return err
					}
					fixture = loaded
				}
				n, err := platform.Seed(fixture)
				if err != nil {
					return fmt.Errorf("failed to seed fake platform: %w", err)
				}
				a.log.Info("seeded fake platform", zap.Int("resources", n))
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "fake platform API on http://%s\n", cfg.Addr)
			return fakeapi.NewServer(platform, cfg, a.log).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&seedFile, "seed-file", "", "YAML fixture to seed instead of the built-in one")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "start empty")
	return cmd
}
