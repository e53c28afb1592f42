package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/feral-file/nft-metadata-gateway/internal/bootstrap"
	"github.com/feral-file/nft-metadata-gateway/internal/domain"
	"github.com/feral-file/nft-metadata-gateway/internal/logger"
	"github.com/feral-file/nft-metadata-gateway/internal/metadata"
)

// ResolveOutput is printed by the resolve command
type ResolveOutput struct {
	Metadata    metadata.Document `json:"metadata"`
	Source      domain.Source     `json:"source"`
	Cached      bool              `json:"cached"`
	LatencyMs   int64             `json:"latency_ms"`
	GatewayUsed string            `json:"gateway,omitempty"`
}

func (a *app) newResolveCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "resolve <contract> <token_id>",
		Short: "Resolve the metadata document of a token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			defer logger.Flush(2 * time.Second)

			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			components, err := bootstrap.Build(ctx, cfg.CoreConfig, a.opts.Deps)
			if err != nil {
				return err
			}
			defer components.Close()

			result, err := components.Orchestrator.Resolve(ctx, args[0], args[1], cfg.PublicBaseURL, timeout)
			if err != nil {
				return err
			}

			return a.printJSON(cmd.OutOrStdout(), ResolveOutput{
				Metadata:    metadata.ToDocument(result.Metadata),
				Source:      result.Source,
				Cached:      result.Cached,
				LatencyMs:   result.LatencyMs,
				GatewayUsed: result.GatewayUsed,
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall resolution deadline (defaults to resolution.timeout)")
	return cmd
}
