package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	password string
	restore  int
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a wallet from a password.",
	Run:   createRun,
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVarP(&password, "password", "s", "", "Password the wallet is derived from.")
	createCmd.Flags().IntVarP(&restore, "restore", "r", 1, "Number of addresses to derive.")
}

func createRun(cmd *cobra.Command, args []string) {
	if _, err := os.Stat(getWalletPath()); err == nil {
		log.Fatal(fmt.Errorf("wallet %s already exists", getWalletPath()))
	}

	if restore < 1 {
		log.Fatal(errors.New("at least one address must be derived"))
	}

	w, err := keyring().Restore(password, restore)
	if err != nil {
		log.Fatal(err)
	}

	if err := saveWallet(w); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Wallet:", getWalletPath())
	for _, kp := range w.Addresses {
		fmt.Printf("%d: %s\n", kp.Index, kp.Address)
	}
}
