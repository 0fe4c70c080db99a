// Package servecmder provides the serve command for running the memory
// API and MCP server.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parchmentlabs/engram/api"
	"github.com/parchmentlabs/engram/api/mcp"
	"github.com/parchmentlabs/engram/pkg/config"
	"github.com/parchmentlabs/engram/pkg/dotdir"
	"github.com/parchmentlabs/engram/pkg/eventstream"
	"github.com/parchmentlabs/engram/pkg/eventstream/nop"
	ssepub "github.com/parchmentlabs/engram/pkg/eventstream/sse"
	"github.com/parchmentlabs/engram/pkg/logger"
	memoryutils "github.com/parchmentlabs/engram/pkg/memory/utils"
	"github.com/parchmentlabs/engram/pkg/memory/worker"
	"github.com/parchmentlabs/engram/pkg/sse"
)

const serveLongDesc string = `Run the engram memory server.

Serves the HTTP API for learning, listing, and forgetting documents,
the context endpoint chat frontends read from, and an MCP endpoint at
/mcp so agents can query memory as tools.

The backing file is watched while serving: edits made by another
process (e.g. the CLI) are picked up without a restart.

Examples:
  engram serve
  engram serve --listen :9090
  engram serve --no-mcp`

const serveShortDesc string = "Run the memory API and MCP server"

type serveCommander struct {
	listen        string
	storeDir      string
	quotaKB       uint
	modelProvider string
	modelTarget   string
	modelName     string
	noMCP         bool
	debug         bool

	v *viper.Viper
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagAPIListen,
				config.FlagStoreDir,
				config.FlagQuotaKB,
				config.FlagModelProvider,
				config.FlagModelTarget,
				config.FlagModelName,
			})

			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagStoreDir, &cmder.storeDir)
	config.AddUintFlag(cmd, config.Flags, config.FlagQuotaKB, &cmder.quotaKB)
	config.AddStringFlag(cmd, config.Flags, config.FlagModelProvider, &cmder.modelProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagModelTarget, &cmder.modelTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagModelName, &cmder.modelName)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the MCP endpoint")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	target, err := dotdir.NewManager().Target("")
	if err != nil {
		return fmt.Errorf("resolving engram dir: %w", err)
	}

	logFile, err := os.OpenFile(filepath.Join(target, "engram.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	log := logger.Multi(
		logger.New(logger.WithDebug(c.debug), logger.WithPretty(true)),
		logger.New(logger.WithDebug(c.debug), logger.WithJSON(true), logger.WithWriter(logFile)),
	)

	broker, events, err := c.newEvents()
	if err != nil {
		return err
	}

	manager, store, err := memoryutils.NewManager(&memoryutils.NewManagerOpts{
		StoreDir:      c.v.GetString("store.dir"),
		QuotaKB:       c.v.GetUint("store.quota_kb"),
		ModelProvider: c.v.GetString("model.provider"),
		ModelTarget:   c.v.GetString("model.target"),
		ModelName:     c.v.GetString("model.name"),
		Events:        events,
		Logger:        log,
	})
	if err != nil {
		return err
	}
	defer manager.Close()

	// Pick up backing-file edits made by other processes while serving.
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go func() {
		if err := store.Watch(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("store watcher stopped", "error", err)
		}
	}()

	pool, err := worker.NewPool(&worker.Config{
		Manager: manager,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("creating ingest pool: %w", err)
	}
	defer pool.Close()

	apiConfig := api.Config{
		ListenAddr: c.v.GetString("api.listen"),
		Broker:     broker,
		Pool:       pool,
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Manager: manager,
		Noop:    c.noMCP,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("creating mcp server: %w", err)
	}

	apiServer := api.NewServer(apiConfig, manager, mcpServer.Handler(), log)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
		return apiServer.Shutdown()
	}
}

// newEvents builds the document event publisher from configuration.
// The broker is non-nil only for the sse provider; the API server uses
// it to feed the /events endpoint.
func (c *serveCommander) newEvents() (*sse.Broker, eventstream.Publisher, error) {
	switch provider := c.v.GetString("events.provider"); provider {
	case "sse":
		broker := sse.NewBroker()
		return broker, ssepub.NewPublisher(broker), nil
	case "", "nop":
		return nil, nop.NewPublisher(), nil
	default:
		return nil, nil, fmt.Errorf("unsupported events provider: %s", provider)
	}
}
