package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/hasher"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/signature"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

// ErrInsufficientFunds is returned when the spendable outputs can't cover the
// amount and the fee.
var ErrInsufficientFunds = errors.New("insufficient funds")

var (
	to     string
	amount uint64
	fee    uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send coins to an address.",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address to send to.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "a", 0, "Amount to send.")
	sendCmd.Flags().Uint64VarP(&fee, "fee", "f", 1, "Fee left to the miner.")
}

func sendRun(cmd *cobra.Command, args []string) {
	if !signature.IsAddress(to) {
		log.Fatal(fmt.Errorf("invalid address %q", to))
	}

	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	var spendable []database.UnspentOutput
	for _, kp := range w.Addresses {
		bal, err := getBalance(kp.Address)
		if err != nil {
			log.Fatal(err)
		}
		spendable = append(spendable, bal.Spendable...)
	}

	tx, err := buildTx(w, spendable, to, amount, fee)
	if err != nil {
		log.Fatal(err)
	}

	data, err := json.Marshal(tx)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", nodeURL), "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("submit: status %d: %s", resp.StatusCode, body)
	}

	fmt.Println(string(body))
}

// buildTx picks spendable outputs in order until they cover the amount and
// the fee. What is left over goes back to the first address of the wallet.
func buildTx(w wallet.Wallet, spendable []database.UnspentOutput, to string, amount uint64, fee uint64) (database.Tx, error) {
	if amount == 0 {
		return database.Tx{}, errors.New("amount must be greater than zero")
	}

	need := amount + fee

	var outpoints []database.Outpoint
	var keys []*ecdsa.PrivateKey
	var total uint64
	for _, u := range spendable {
		if total >= need {
			break
		}

		kp, exists := w.Lookup(u.Address)
		if !exists {
			continue
		}

		pk, err := kp.ECDSA()
		if err != nil {
			return database.Tx{}, err
		}

		outpoints = append(outpoints, u.Outpoint())
		keys = append(keys, pk)
		total += u.Amount
	}

	if total < need {
		return database.Tx{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, total, need)
	}

	outputs := []database.TxOutput{{Address: to, Amount: amount}}
	if change := total - need; change > 0 {
		outputs = append(outputs, database.TxOutput{Address: w.Addresses[0].Address, Amount: change})
	}

	return database.NewTx(outpoints, outputs).Sign(hasher.New(), keys)
}
