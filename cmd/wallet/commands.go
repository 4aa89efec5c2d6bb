package main

import (
	"fmt"
	"strings"

	"github.com/AlexZinkM/evm-wallet/ethereum"
	"github.com/AlexZinkM/evm-wallet/internal/config"
	"github.com/AlexZinkM/evm-wallet/internal/crypto"
	"github.com/AlexZinkM/evm-wallet/internal/model"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	sendNoWait  bool
	invokeValue string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new wallet and save it",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		storage, done, err := a.storage(true)
		if err != nil {
			return err
		}
		defer done()

		session := ethereum.NewSession()
		defer session.Close()

		resp, err := a.svc.GenerateWallet(session, storage)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Wallet saved to %s", config.GetWalletFilePath())
		pterm.Info.Printfln("Address: %s", resp.Address)
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a hex private key and save it",
	Long:  "Reads a 32 byte hex private key (with or without 0x) from the terminal without echo and saves it to the wallet file.",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		secret, err := config.ReadPassword("Private key (hex): ")
		if err != nil {
			return err
		}
		defer clear(secret)

		session := ethereum.NewSession()
		defer session.Close()
		if _, err := a.svc.RestoreWallet(session, string(secret)); err != nil {
			return err
		}

		storage, done, err := a.storage(true)
		if err != nil {
			return err
		}
		defer done()

		addr, err := a.svc.SaveWallet(session, storage)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Wallet %s saved to %s", addr, config.GetWalletFilePath())
		return nil
	}),
}

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the wallet address",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		addr, err := a.walletAddress()
		if err != nil {
			return err
		}
		fmt.Println(addr)
		return nil
	}),
}

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show the balance of the wallet or of another account",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		var account string
		if len(args) == 1 {
			account = args[0]
		} else {
			addr, err := a.walletAddress()
			if err != nil {
				return err
			}
			account = addr
		}

		resp, err := a.svc.GetBalance(cmd.Context(), account)
		if err != nil {
			return err
		}
		printBalance(resp)
		return nil
	}),
}

var sendCmd = &cobra.Command{
	Use:     "send <to> <amount>",
	Short:   "Send ETH",
	Long:    "Sends ETH from the wallet. Amount is wei unless suffixed with gwei or eth, e.g. \"0.01 eth\".",
	Example: "  wallet send 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed \"0.01 eth\"",
	Args:    cobra.RangeArgs(2, 3),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		amount := strings.Join(args[1:], " ")

		session, err := a.loadSession()
		if err != nil {
			return err
		}
		defer session.Close()

		spinner, _ := pterm.DefaultSpinner.Start("Sending transaction")
		resp, err := a.svc.Pay(cmd.Context(), session, args[0], amount, !sendNoWait)
		stopSpinner(spinner, err)
		printTx(resp)
		return err
	}),
}

var contractsCmd = &cobra.Command{
	Use:   "contracts [name]",
	Short: "List registered contracts or the functions of one",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if len(args) == 1 {
			resp, err := a.svc.ListFunctions(args[0])
			if err != nil {
				return err
			}
			pterm.DefaultSection.Println(resp.Contract)
			for _, fn := range resp.Functions {
				fmt.Println(fn)
			}
			return nil
		}
		printContracts(a.svc.ListContracts())
		return nil
	}),
}

var callCmd = &cobra.Command{
	Use:     "call <contract> <function> [args...]",
	Short:   "Query a contract function without sending a transaction",
	Example: "  wallet call Counter getCount",
	Args:    cobra.MinimumNArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		resp, err := a.svc.Call(cmd.Context(), nil, model.CallRequest{
			Contract: args[0],
			Function: args[1],
			Args:     args[2:],
		})
		if err != nil {
			return err
		}
		for _, r := range resp.Results {
			fmt.Println(r)
		}
		return nil
	}),
}

var invokeCmd = &cobra.Command{
	Use:     "invoke <contract> <function> [args...]",
	Short:   "Send a transaction calling a contract function and wait for it",
	Example: "  wallet invoke Counter setCount 10",
	Args:    cobra.MinimumNArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		session, err := a.loadSession()
		if err != nil {
			return err
		}
		defer session.Close()

		spinner, _ := pterm.DefaultSpinner.Start("Invoking " + args[0] + "." + args[1])
		resp, err := a.svc.Invoke(cmd.Context(), session, model.CallRequest{
			Contract: args[0],
			Function: args[1],
			Args:     args[2:],
			Value:    invokeValue,
		})
		stopSpinner(spinner, err)
		printTx(resp)
		return err
	}),
}

var rekeyCmd = &cobra.Command{
	Use:   "rekey",
	Short: "Change the password of an encrypted wallet",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if !a.cfg.Encrypted() {
			return fmt.Errorf("%s is not an encrypted wallet (%s)", a.cfg.WalletFilePath, crypto.Extension)
		}
		storage, done, err := a.storage(false)
		if err != nil {
			return err
		}
		defer done()

		next, err := promptNewPassword()
		if err != nil {
			return err
		}
		defer clear(next)

		if err := storage.(*crypto.EncryptedStorage).Rekey(next); err != nil {
			return err
		}
		pterm.Success.Println("Password changed")
		return nil
	}),
}

func init() {
	sendCmd.Flags().BoolVar(&sendNoWait, "no-wait", false, "return once the transaction is broadcast")
	invokeCmd.Flags().StringVar(&invokeValue, "value", "", "ETH to attach to a payable function, e.g. \"0.1 eth\"")
}

// withApp builds the app for a command and closes it afterwards
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

// walletAddress reads the account id, without the password for .cwt files
func (a *app) walletAddress() (string, error) {
	if a.cfg.Encrypted() {
		raw, err := crypto.ReadWalletAddress(a.cfg.WalletFilePath)
		if err != nil {
			return "", err
		}
		return raw, nil
	}
	storage, done, err := a.storage(false)
	if err != nil {
		return "", err
	}
	defer done()
	return ethereum.WalletAddress(storage)
}

func stopSpinner(s *pterm.SpinnerPrinter, err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.Fail(err.Error())
		return
	}
	s.Success()
}

func printBalance(b *model.BalanceResponse) {
	rows := [][]string{
		{"Address", b.Address},
		{"Balance", b.ETH + " ETH"},
		{"Wei", b.Wei},
	}
	if b.Fiat != "" {
		rows = append(rows, []string{b.Currency, b.Fiat + " (rate " + b.Rate + ")"})
	}
	pterm.DefaultTable.WithData(rows).Render()
}

func printTx(resp *model.PayResponse) {
	if resp == nil {
		return
	}
	rows := [][]string{
		{"Hash", resp.TxHash},
		{"Status", resp.Status},
	}
	if resp.BlockNumber > 0 {
		rows = append(rows,
			[]string{"Block", fmt.Sprint(resp.BlockNumber)},
			[]string{"Gas used", fmt.Sprint(resp.GasUsed)})
	}
	pterm.DefaultTable.WithData(rows).Render()
}

func printContracts(resp *model.ContractsResponse) {
	if len(resp.Contracts) == 0 {
		pterm.Info.Println("No contracts registered")
		return
	}
	rows := [][]string{{"Name", "Address", "Functions"}}
	for _, c := range resp.Contracts {
		rows = append(rows, []string{c.Name, c.Address, strings.Join(c.Functions, ", ")})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
