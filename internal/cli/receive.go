package cli

import (
	"github.com/spf13/cobra"

	"github.com/nimbuswallet/core/internal/output"
)

// receiveCmd shows the active wallet's next unused receiving address.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var receiveCmd = &cobra.Command{
	Use:   "receive",
	Short: "Show a receiving address",
	Long: `Display the active wallet's next unused receiving address, expanding
the gap-limit discovery window first if every known address has history.

Example:
  walletcore receive`,
	RunE: runReceive,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(receiveCmd)
}

func runReceive(cmd *cobra.Command, _ []string) error {
	ctx := GetCmdContext(cmd)

	result, err := ctx.Svc.NextReceiveAddress()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if ctx.Fmt.Format() == output.FormatJSON {
		return writeJSON(w, result)
	}

	outln(w)
	outln(w, "Receiving address:")
	outln(w)
	out(w, "  Address: %s\n", result.Address)
	out(w, "  Index:   %d\n", result.DerivationIndex)
	outln(w)
	return nil
}
