package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/evm-wallet/ethereum"
	"github.com/AlexZinkM/evm-wallet/internal/config"
	"github.com/AlexZinkM/evm-wallet/internal/keystore"
	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	optCreate    = "Create new wallet"
	optLoad      = "Load wallet from file"
	optRestore   = "Restore from private key"
	optSave      = "Save wallet to file"
	optBalance   = "Show balance"
	optSend      = "Send ETH"
	optContracts = "List contracts"
	optCall      = "Call contract"
	optInvoke    = "Invoke contract"
	optExit      = "Exit"
)

var menuOptions = []string{
	optCreate, optLoad, optRestore, optSave, optBalance,
	optSend, optContracts, optCall, optInvoke, optExit,
}

var errMenuExit = errors.New("exit")

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive wallet session",
	Long:  "Keeps one wallet in memory for the whole session. Console logging is off while the menu owns the terminal; use LOG_FILE to keep a log.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		m := &menu{app: a, session: ethereum.NewSession()}
		defer m.session.Close()
		return m.loop(cmd.Context())
	},
}

type menu struct {
	app     *app
	session *ethereum.Session
}

func (m *menu) loop(ctx context.Context) error {
	pterm.DefaultHeader.WithFullWidth().Println("EVM Wallet")

	for {
		if ctx.Err() != nil {
			return nil
		}
		m.status()

		choice, err := pterm.DefaultInteractiveSelect.
			WithOptions(menuOptions).
			WithDefaultOption(menuOptions[0]).
			WithMaxHeight(len(menuOptions)).
			Show("Choose an action")
		if err != nil {
			return err
		}

		err = m.handle(ctx, choice)
		switch {
		case errors.Is(err, errMenuExit):
			return nil
		case errors.Is(err, keystore.ErrEntropy):
			// no usable randomness, nothing else is safe to do
			return err
		case err != nil:
			m.app.log.Warn("menu action failed", zap.String("action", choice), zap.Error(err))
			pterm.Error.Println(err)
		}
	}
}

func (m *menu) status() {
	addr, err := m.session.Address()
	if err != nil {
		pterm.Info.Println("No wallet loaded")
		return
	}
	pterm.Info.Printfln("Wallet: %s", addr.Hex())
}

func (m *menu) handle(ctx context.Context, choice string) error {
	svc := m.app.svc

	switch choice {
	case optCreate:
		addr, err := svc.CreateWallet(m.session)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Created %s (not saved yet)", addr)

	case optLoad:
		storage, done, err := m.app.storage(false)
		if err != nil {
			return err
		}
		defer done()
		addr, err := svc.LoadWallet(m.session, storage)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Loaded %s", addr)

	case optRestore:
		secret, err := config.ReadPassword("Private key (hex): ")
		if err != nil {
			return err
		}
		defer clear(secret)
		addr, err := svc.RestoreWallet(m.session, string(secret))
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Restored %s (not saved yet)", addr)

	case optSave:
		if !m.session.Loaded() {
			return werr.New(werr.WalletNotLoaded, "no wallet loaded")
		}
		storage, done, err := m.app.storage(true)
		if err != nil {
			return err
		}
		defer done()
		addr, err := svc.SaveWallet(m.session, storage)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Saved %s to %s", addr, m.app.cfg.WalletFilePath)

	case optBalance:
		account, err := m.askAccount()
		if err != nil {
			return err
		}
		resp, err := svc.GetBalance(ctx, account)
		if err != nil {
			return err
		}
		printBalance(resp)

	case optSend:
		to, err := ask("Recipient address")
		if err != nil {
			return err
		}
		amount, err := ask("Amount (wei, or suffix gwei/eth)")
		if err != nil {
			return err
		}
		ok, err := pterm.DefaultInteractiveConfirm.Show(fmt.Sprintf("Send %s to %s?", amount, to))
		if err != nil || !ok {
			return err
		}
		spinner, _ := pterm.DefaultSpinner.Start("Sending transaction")
		resp, err := svc.Pay(ctx, m.session, to, amount, true)
		stopSpinner(spinner, err)
		printTx(resp)
		return err

	case optContracts:
		printContracts(svc.ListContracts())

	case optCall, optInvoke:
		req, err := m.askCall(choice == optInvoke)
		if err != nil {
			return err
		}
		if choice == optCall {
			resp, err := svc.Call(ctx, m.session, req)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("%s.%s = %s", resp.Contract, resp.Function, strings.Join(resp.Results, ", "))
			return nil
		}
		spinner, _ := pterm.DefaultSpinner.Start("Invoking " + req.Contract + "." + req.Function)
		resp, err := svc.Invoke(ctx, m.session, req)
		stopSpinner(spinner, err)
		printTx(resp)
		return err

	case optExit:
		return errMenuExit
	}
	return nil
}

// askAccount defaults to the session wallet
func (m *menu) askAccount() (string, error) {
	def := ""
	if addr, err := m.session.Address(); err == nil {
		def = addr.Hex()
	}
	account, err := pterm.DefaultInteractiveTextInput.WithDefaultValue(def).Show("Address")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(account), nil
}

func (m *menu) askCall(payable bool) (model.CallRequest, error) {
	var req model.CallRequest

	names := m.app.svc.Registry().Names()
	if len(names) == 0 {
		return req, werr.New(werr.UnknownContract, "no contracts registered")
	}
	contract, err := pterm.DefaultInteractiveSelect.WithOptions(names).Show("Contract")
	if err != nil {
		return req, err
	}
	fns, err := m.app.svc.ListFunctions(contract)
	if err != nil {
		return req, err
	}
	if len(fns.Functions) == 0 {
		return req, werr.New(werr.UnknownFunction, "%s has no callable functions", contract)
	}
	function, err := pterm.DefaultInteractiveSelect.WithOptions(fns.Functions).Show("Function")
	if err != nil {
		return req, err
	}

	raw, err := pterm.DefaultInteractiveTextInput.Show("Arguments (comma separated, empty for none)")
	if err != nil {
		return req, err
	}
	req = model.CallRequest{Contract: contract, Function: function, Args: splitArgs(raw)}

	if payable {
		value, err := pterm.DefaultInteractiveTextInput.Show("Value to attach (empty for none)")
		if err != nil {
			return req, err
		}
		req.Value = strings.TrimSpace(value)
	}
	return req, nil
}

func ask(prompt string) (string, error) {
	s, err := pterm.DefaultInteractiveTextInput.Show(prompt)
	if err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", werr.New(werr.InvalidArgument, "%s is required", strings.ToLower(prompt))
	}
	return s, nil
}

func splitArgs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
