// Command wallet is a local Ethereum wallet: key management, transfers and
// registered contract calls from the terminal or over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	walletPath string
	rpcURL     string
	logLevel   string
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:           "wallet",
	Short:         "Local Ethereum wallet",
	Long:          "Manage a single Ethereum account: generate or import a key, check the balance, send ETH and call registered contracts.\n\nConfiguration comes from the environment (WALLET_FILE_PATH, ETH_RPC_URL, CHAIN_ID, ...). A wallet file ending in .cwt is password protected.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.walletPath, "wallet", "w", "", "wallet file (overrides WALLET_FILE_PATH)")
	rootCmd.PersistentFlags().StringVar(&flags.rpcURL, "rpc", "", "JSON-RPC endpoint (overrides ETH_RPC_URL)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd, menuCmd, generateCmd, importCmd, addressCmd,
		balanceCmd, sendCmd, contractsCmd, callCmd, invokeCmd, rekeyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode separates bad input from failures that happened on the network
func exitCode(err error) int {
	switch werr.KindOf(err) {
	case werr.InvalidKeyFormat, werr.InvalidDestination, werr.InvalidAmount,
		werr.InvalidArgument, werr.UnknownContract, werr.UnknownFunction:
		return 2
	case werr.ConfirmationTimeout:
		return 3
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
