package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

type balance struct {
	Address     string                   `json:"address"`
	Name        string                   `json:"name"`
	Balance     uint64                   `json:"balance"`
	Unspent     []database.UnspentOutput `json:"unspent"`
	Spendable   []database.UnspentOutput `json:"spendable"`
	LatestBlock string                   `json:"latest_block"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	var total uint64
	for _, kp := range w.Addresses {
		bal, err := getBalance(kp.Address)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("%d: %s: %d\n", kp.Index, kp.Address, bal.Balance)
		total += bal.Balance
	}

	fmt.Println("Total:", total)
}

func getBalance(address string) (balance, error) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/balances/%s", nodeURL, address))
	if err != nil {
		return balance{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return balance{}, fmt.Errorf("balance for %s: status %d", address, resp.StatusCode)
	}

	var bal balance
	if err := json.NewDecoder(resp.Body).Decode(&bal); err != nil {
		return balance{}, err
	}

	return bal, nil
}
