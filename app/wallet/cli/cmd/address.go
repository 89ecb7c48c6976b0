package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var newAddress bool

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the wallet addresses or derive a new one.",
	Run:   addressRun,
}

func init() {
	rootCmd.AddCommand(addressCmd)
	addressCmd.Flags().BoolVarP(&newAddress, "new", "n", false, "Derive the next address.")
}

func addressRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	if newAddress {
		var next uint32
		for _, kp := range w.Addresses {
			if kp.Index >= next {
				next = kp.Index + 1
			}
		}

		if _, err := keyring().DeriveAddress(&w, next); err != nil {
			log.Fatal(err)
		}

		// The address is only handed out once the wallet holding its key
		// is saved.
		if err := saveWallet(w); err != nil {
			log.Fatal(err)
		}
	}

	for _, kp := range w.Addresses {
		fmt.Printf("%d: %s\n", kp.Index, kp.Address)
	}
}
