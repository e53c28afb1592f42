package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/nft-metadata-gateway/internal/adapter"
	"github.com/feral-file/nft-metadata-gateway/internal/bootstrap"
	"github.com/feral-file/nft-metadata-gateway/internal/config"
	"github.com/feral-file/nft-metadata-gateway/internal/logger"
)

// Options carries the collaborators of the CLI
// Nil fields fall back to the real implementations
type Options struct {
	LoadConfig func(configFile, envPath string) (*config.CLIConfig, error)
	Deps       bootstrap.Dependencies
}

type app struct {
	opts       Options
	configFile string
	envPath    string
	json       adapter.JSON
}

// NewRootCommand builds the metadata-cli command tree
func NewRootCommand(opts Options) *cobra.Command {
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.LoadCLIConfig
	}
	a := &app{opts: opts, json: adapter.NewJSON()}

	root := &cobra.Command{
		Use:   "metadata-cli",
		Short: "Resolve NFT metadata and inspect IPFS gateways from the command line",
		Long: `metadata-cli runs the same resolution pipeline as the API server
against a local configuration. It defaults to the in-memory store so it
needs no Redis.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "path to configuration file")
	root.PersistentFlags().StringVar(&a.envPath, "env", "config/", "path to environment files")

	root.AddCommand(
		a.newResolveCommand(),
		a.newValidateGatewaysCommand(),
		newNormalizeCommand(),
	)
	return root
}

// loadConfig reads the configuration and brings up the logger
func (a *app) loadConfig() (*config.CLIConfig, error) {
	cfg, err := a.opts.LoadConfig(a.configFile, a.envPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "metadata-cli",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// printJSON writes v as indented JSON
func (a *app) printJSON(w io.Writer, v interface{}) error {
	raw, err := a.json.Marshal(v)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}
