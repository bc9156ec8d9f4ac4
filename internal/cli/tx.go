package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nimbuswallet/core/internal/output"
	"github.com/nimbuswallet/core/internal/txadapter"
	"github.com/nimbuswallet/core/usecases"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	sendTo      string
	sendAmount  int64
	sendFeeRate int64

	txListLimit  int
	txListCursor string
)

// txCmd is the parent command for sending and listing transactions.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Send bitcoin and inspect transaction history",
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send bitcoin from the active wallet",
	Long: `Build, sign, and broadcast a P2WPKH spend from the active wallet.

The send amount is validated against the confirmed balance before any
Electrum round trip beyond a fee estimate: an insufficient-funds rejection
never reaches the network.

Example:
  walletcore tx send --to bc1q... --amount 150000
  walletcore tx send --to bc1q... --amount 150000 --fee-rate 12`,
	RunE: runTxSend,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the active wallet's transaction history",
	Aliases: []string{"ls", "history"},
	Long: `List one page of the active wallet's transaction history, newest first.

Example:
  walletcore tx list
  walletcore tx list --limit 50
  walletcore tx list --cursor <cursor-from-previous-page>`,
	RunE: runTxList,
}

// sendTimeout bounds the fee-estimate and broadcast round trips.
const sendTimeout = 30 * time.Second

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txSendCmd, txListCmd)

	txSendCmd.Flags().StringVar(&sendTo, "to", "", "recipient address (required)")
	txSendCmd.Flags().Int64Var(&sendAmount, "amount", 0, "amount to send, in satoshis (required)")
	txSendCmd.Flags().Int64Var(&sendFeeRate, "fee-rate", 0, "fee rate in sat/vB; 0 asks the server to estimate")
	_ = txSendCmd.MarkFlagRequired("to")
	_ = txSendCmd.MarkFlagRequired("amount")

	txListCmd.Flags().IntVar(&txListLimit, "limit", 25, "maximum transactions to return")
	txListCmd.Flags().StringVar(&txListCursor, "cursor", "", "page cursor returned by a previous list")
}

func runTxSend(cmd *cobra.Command, _ []string) error {
	ctx := GetCmdContext(cmd)

	sendCtx, cancel := contextWithTimeout(cmd, sendTimeout)
	defer cancel()

	result, err := ctx.Svc.SendBitcoin(sendCtx, usecases.SendBitcoinRequest{
		ToAddress:       sendTo,
		AmountSats:      sendAmount,
		FeeRateSatPerVB: sendFeeRate,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if ctx.Fmt.Format() == output.FormatJSON {
		return writeJSON(w, result)
	}

	outln(w)
	outln(w, "Transaction broadcast:")
	outln(w)
	out(w, "  Txid:   %s\n", result.Txid)
	out(w, "  Fee:    %d sats\n", result.FeeSats)
	out(w, "  Change: %d sats\n", result.ChangeSats)
	out(w, "  Size:   %d vB\n", result.VBytes)
	outln(w)
	return nil
}

func runTxList(cmd *cobra.Command, _ []string) error {
	ctx := GetCmdContext(cmd)

	listCtx, cancel := contextWithTimeout(cmd, sendTimeout)
	defer cancel()

	page, err := ctx.Svc.ListTransactions(listCtx, txadapter.Cursor(txListCursor), txListLimit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if ctx.Fmt.Format() == output.FormatJSON {
		return writeJSON(w, page)
	}

	if len(page.Items) == 0 {
		outln(w, "No transactions yet.")
		return nil
	}

	table := output.NewTable("TXID", "TYPE", "AMOUNT (SATS)", "STATUS")
	for _, item := range page.Items {
		table.AddRow(item.Txid, string(item.Type), fmt.Sprintf("%d", item.AmountSats), string(item.Status))
	}
	if err := table.Render(w); err != nil {
		return err
	}

	if page.NextCursor != "" {
		outln(w)
		out(w, "Next page: walletcore tx list --cursor %s\n", page.NextCursor)
	}
	return nil
}
