package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/files"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/lifecycle"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/transport"
)

// globalFlags are the persistent root flags
type globalFlags struct {
	configPath string
	apiURL     string
	token      string
	logLevel   string
	json       bool
	metricsOut string
}

// app holds every component a command may use. It is populated by init
// once flags are parsed.
type app struct {
	flags globalFlags

	cfg      *config.Config
	log      *logging.Logger
	registry *prometheus.Registry
	metrics  *monitoring.Metrics
	client   *transport.Client

	apps             *registry.AppRegistry
	notebooks        *registry.NotebookRegistry
	appSessions      *lifecycle.AppSessions
	notebookSessions *lifecycle.NotebookSessions
	files            *files.Client

	out *printer
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.flags.apiURL != "" {
		cfg.API.BaseURL = a.flags.apiURL
	}
	if a.flags.token != "" {
		cfg.API.Token = a.flags.token
	}
	if a.flags.logLevel != "" {
		cfg.Logging.Level = a.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(logging.FromConfig(cfg.Logging))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	client := transport.New(cfg, transport.WithLogger(log), transport.WithMetrics(metrics))
	ws := workspace.NewHTTP(client)

	engineOpts := []lifecycle.Option{
		lifecycle.WithLogger(log),
		lifecycle.WithMetrics(metrics),
		lifecycle.WithVersionFencing(cfg.Engine.FenceStaleVersions),
	}
	registryOpts := []registry.Option{
		registry.WithLogger(log),
		registry.WithMetrics(metrics),
	}

	a.cfg = cfg
	a.log = log
	a.registry = reg
	a.metrics = metrics
	a.client = client
	a.apps = registry.NewAppRegistry(client, ws, registryOpts...)
	a.notebooks = registry.NewNotebookRegistry(client, registryOpts...)
	a.appSessions = lifecycle.NewAppSessions(client, engineOpts...)
	a.notebookSessions = lifecycle.NewNotebookSessions(client, ws, engineOpts...)
	a.files = files.New(client, files.WithLogger(log))
	a.out = newPrinter(cmd.OutOrStdout(), a.flags.json)
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.flags.configPath != "" {
		return config.LoadFile(a.flags.configPath)
	}
	return config.Load()
}

// close flushes the logger and writes metrics when requested
func (a *app) close() error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.flags.metricsOut != "" && a.registry != nil {
		if err := prometheus.WriteToTextfile(a.flags.metricsOut, a.registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
