package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/feral-file/nft-metadata-gateway/internal/bootstrap"
	"github.com/feral-file/nft-metadata-gateway/internal/gateway"
	"github.com/feral-file/nft-metadata-gateway/internal/logger"
	"github.com/feral-file/nft-metadata-gateway/internal/uri"
)

const defaultMinGateways = 2

// ErrValidationFailed is returned when fewer gateways than requested serve the content
var ErrValidationFailed = errors.New("gateway validation failed")

// ValidateOutput is printed by the validate-gateways command
type ValidateOutput struct {
	CIDPath         string          `json:"cid_path"`
	MinGateways     int             `json:"min_gateways"`
	Success         bool            `json:"success"`
	WorkingGateways []gateway.Match `json:"working_gateways"`
	Errors          []string        `json:"errors"`
	Attempts        int             `json:"attempts"`
}

func (a *app) newValidateGatewaysCommand() *cobra.Command {
	var (
		minGateways int
		timeout     time.Duration
		retry       bool
	)

	cmd := &cobra.Command{
		Use:   "validate-gateways <cid_path>",
		Short: "Check that enough gateways serve an IPFS reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			defer logger.Flush(2 * time.Second)

			selector, err := bootstrap.BuildSelector(cfg.CoreConfig, a.opts.Deps)
			if err != nil {
				return err
			}

			if timeout <= 0 {
				timeout = cfg.Gateway.ProbeTimeout
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			result := selector.ValidateMultiGateway(ctx, args[0], minGateways, timeout, retry)
			if err := a.printJSON(cmd.OutOrStdout(), ValidateOutput{
				CIDPath:         uri.NormalizeCIDPath(args[0]),
				MinGateways:     minGateways,
				Success:         result.Success,
				WorkingGateways: result.WorkingGateways,
				Errors:          result.Errors,
				Attempts:        result.Attempts,
			}); err != nil {
				return err
			}
			if !result.Success {
				return ErrValidationFailed
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&minGateways, "min", defaultMinGateways, "number of gateways that must serve the content")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per attempt deadline (defaults to gateway.probe_timeout)")
	cmd.Flags().BoolVar(&retry, "retry", true, "retry with backoff until the deadline")
	return cmd
}
