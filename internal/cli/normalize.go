package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feral-file/nft-metadata-gateway/internal/uri"
)

func newNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <ref>",
		Short: "Print the canonical CID path of an IPFS reference",
		Long: `normalize accepts ipfs:// URIs, gateway URLs and bare CID paths and
prints the form used to build gateway URLs, followed by the root CID
when the reference starts with one.
References that are not IPFS content are printed unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			out := cmd.OutOrStdout()

			if _, err := fmt.Fprintln(out, uri.NormalizeCIDPath(ref)); err != nil {
				return err
			}
			if root := uri.RootCID(ref); root != "" {
				if _, err := fmt.Fprintln(out, root); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
