// Package cmd contains the wallet app.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	walletName string
	walletPath string
	nodeURL    string
	scryptN    int
)

const walletExtension = ".json"

func init() {
	rootCmd.PersistentFlags().StringVarP(&walletName, "wallet", "w", "miner1", "Name of the wallet file.")
	rootCmd.PersistentFlags().StringVarP(&walletPath, "wallet-path", "p", "zblock/wallets/", "Path to the directory with wallet files.")
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node.")
	rootCmd.PersistentFlags().IntVar(&scryptN, "scrypt-n", 0, "Scrypt cost of the password hash, zero for the default.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Your simple naivecoin wallet",
}

// Execute runs the wallet app.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// =============================================================================

func getWalletPath() string {
	name := walletName
	if !strings.HasSuffix(name, walletExtension) {
		name += walletExtension
	}

	return filepath.Join(walletPath, name)
}

func keyring() *wallet.Keyring {
	return wallet.New(wallet.Config{ScryptN: scryptN})
}

func loadWallet() (wallet.Wallet, error) {
	content, err := os.ReadFile(getWalletPath())
	if err != nil {
		return wallet.Wallet{}, err
	}

	var w wallet.Wallet
	if err := json.Unmarshal(content, &w); err != nil {
		return wallet.Wallet{}, fmt.Errorf("%s: %w", getWalletPath(), err)
	}

	if len(w.Addresses) == 0 {
		return wallet.Wallet{}, errors.New("wallet has no addresses")
	}

	return w, nil
}

func saveWallet(w wallet.Wallet) error {
	if err := os.MkdirAll(walletPath, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(getWalletPath(), data, 0600)
}
