package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nimbuswallet/core/internal/output"
	"github.com/nimbuswallet/core/usecases"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	importPhrase  string
	watchAddress  string
	backupConfirm bool
)

// walletCmd is the parent command for wallet operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
	Long:  `Create, import, list, activate, and remove wallets.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new wallet",
	Long: `Create a new wallet with a freshly generated BIP39 mnemonic.

The recovery phrase is shown exactly once - write it down and store it
securely. Anyone with the phrase can spend the wallet's funds.

Example:
  walletcore wallet create main`,
	Args: cobra.ExactArgs(1),
	RunE: runWalletCreate,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Restore a wallet from a recovery phrase",
	Long: `Restore a wallet from an existing BIP39 recovery phrase.

Example:
  walletcore wallet import backup --phrase "abandon abandon ... about"
  walletcore wallet import backup   # prompts for the phrase interactively`,
	Args: cobra.ExactArgs(1),
	RunE: runWalletImport,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletWatchCmd = &cobra.Command{
	Use:   "watch <name>",
	Short: "Add a watch-only wallet for a single address",
	Long: `Register a wallet that can observe a single address's balance and
history but holds no key material and can never sign a transaction.

Example:
  walletcore wallet watch cold-storage --address bc1q...`,
	Args: cobra.ExactArgs(1),
	RunE: runWalletWatch,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all wallets",
	Aliases: []string{"ls"},
	Long: `List every wallet known to this installation, marking the active one.

Example:
  walletcore wallet list
  walletcore wallet list -o json`,
	RunE: runWalletList,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Switch the active wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletActivate,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a wallet and its stored recovery phrase",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletDelete,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletBackupCmd = &cobra.Command{
	Use:   "backup <id>",
	Short: "Show a wallet's recovery phrase again",
	Long: `Display a previously created wallet's recovery phrase.

Requires --confirm, so the phrase never prints to a terminal by accident.

Example:
  walletcore wallet backup <id> --confirm`,
	Args: cobra.ExactArgs(1),
	RunE: runWalletBackup,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletCreateCmd, walletImportCmd, walletWatchCmd, walletListCmd, walletActivateCmd, walletDeleteCmd, walletBackupCmd)

	walletImportCmd.Flags().StringVar(&importPhrase, "phrase", "", "recovery phrase (prompted for if omitted)")
	walletWatchCmd.Flags().StringVar(&watchAddress, "address", "", "address to watch (required)")
	_ = walletWatchCmd.MarkFlagRequired("address")
	walletBackupCmd.Flags().BoolVar(&backupConfirm, "confirm", false, "confirm you want the recovery phrase printed")
}

func runWalletCreate(cmd *cobra.Command, args []string) error {
	ctx := GetCmdContext(cmd)

	result, err := ctx.Svc.CreateWallet(usecases.CreateWalletRequest{Name: args[0]})
	if err != nil {
		return err
	}

	displayMnemonic(cmd.OutOrStdout(), result.Mnemonic)

	w := cmd.OutOrStdout()
	if ctx.Fmt.Format() == output.FormatJSON {
		return writeJSON(w, result.Wallet)
	}
	outln(w)
	out(w, "Wallet %q created (id %s).\n", result.Wallet.Name, result.Wallet.ID)
	return nil
}

func runWalletImport(cmd *cobra.Command, args []string) error {
	ctx := GetCmdContext(cmd)

	phrase := importPhrase
	if phrase == "" {
		var err error
		phrase, err = promptMnemonic()
		if err != nil {
			return err
		}
	}

	w, err := ctx.Svc.ImportWallet(usecases.ImportWalletRequest{Name: args[0], Phrase: phrase})
	if err != nil {
		return err
	}

	outw := cmd.OutOrStdout()
	if ctx.Fmt.Format() == output.FormatJSON {
		return writeJSON(outw, w)
	}
	outln(outw, fmt.Sprintf("Wallet %q restored (id %s).", w.Name, w.ID))
	return nil
}

func runWalletWatch(cmd *cobra.Command, args []string) error {
	ctx := GetCmdContext(cmd)

	w, err := ctx.Svc.ImportWatchOnly(usecases.ImportWatchOnlyRequest{Name: args[0], Address: watchAddress})
	if err != nil {
		return err
	}

	outw := cmd.OutOrStdout()
	if ctx.Fmt.Format() == output.FormatJSON {
		return writeJSON(outw, w)
	}
	outln(outw, fmt.Sprintf("Watch-only wallet %q added (id %s).", w.Name, w.ID))
	return nil
}

func runWalletList(cmd *cobra.Command, _ []string) error {
	ctx := GetCmdContext(cmd)
	summaries := ctx.Svc.ListWallets()

	w := cmd.OutOrStdout()
	if ctx.Fmt.Format() == output.FormatJSON {
		return writeJSON(w, summaries)
	}

	if len(summaries) == 0 {
		outln(w, "No wallets yet. Create one with: walletcore wallet create <name>")
		return nil
	}

	table := output.NewTable("ID", "NAME", "TYPE", "ACTIVE")
	for _, s := range summaries {
		active := ""
		if s.Active {
			active = "*"
		}
		table.AddRow(s.ID, s.Name, string(s.Type), active)
	}
	return table.Render(w)
}

func runWalletActivate(cmd *cobra.Command, args []string) error {
	ctx := GetCmdContext(cmd)
	if err := ctx.Svc.ActivateWallet(args[0]); err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(), fmt.Sprintf("Activated wallet %s.", args[0]), ctx.Fmt.Format())
}

func runWalletDelete(cmd *cobra.Command, args []string) error {
	ctx := GetCmdContext(cmd)
	if err := ctx.Svc.DeleteWallet(args[0]); err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(), fmt.Sprintf("Deleted wallet %s.", args[0]), ctx.Fmt.Format())
}

func runWalletBackup(cmd *cobra.Command, args []string) error {
	if !backupConfirm {
		return fmt.Errorf("pass --confirm to display the recovery phrase")
	}
	ctx := GetCmdContext(cmd)

	phrase, err := ctx.Svc.ViewBackupPhrase(args[0])
	if err != nil {
		return err
	}
	displayMnemonic(cmd.OutOrStdout(), phrase)
	return nil
}

// displayMnemonic shows the recovery phrase boxed and numbered, the same
// shape it takes when read back off a paper backup.
func displayMnemonic(w io.Writer, mnemonic string) {
	outln(w)
	outln(w, "===================================================================")
	outln(w, "                    RECOVERY PHRASE")
	outln(w, "===================================================================")
	outln(w)
	outln(w, "Write down these words in order and store them securely.")
	outln(w, "This is the ONLY way to recover your wallet.")
	outln(w)

	words := strings.Fields(mnemonic)
	for i, word := range words {
		out(w, "%2d. %s\n", i+1, word)
	}

	outln(w)
	outln(w, "===================================================================")
	outln(w)
}

// promptMnemonic reads a recovery phrase from stdin as a single line.
func promptMnemonic() (string, error) {
	outln(os.Stderr, "Enter your recovery phrase (all words on one line):")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading recovery phrase: %w", err)
	}
	return strings.TrimSpace(line), nil
}
