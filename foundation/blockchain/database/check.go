package database

import (
	"strings"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/hasher"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/signature"
)

// Policy holds the ledger parameters transaction checks depend on.
type Policy struct {
	FeePerTransaction uint64
}

// CheckTransaction validates a regular transaction against the view of
// unspent outputs and returns the fee it leaves for the miner. The checks run
// in order: shape, input resolution, authorization and conservation. Whether
// the id already exists in the chain or a pending pool is the caller's check.
func CheckTransaction(h *hasher.Hasher, tx Tx, view UTXOView, policy Policy) (uint64, error) {
	if err := checkShape(h, tx); err != nil {
		return 0, err
	}

	if tx.Type != TxRegular {
		return 0, newRuleError(KindStructural, "tx[%s]: type %q is not a regular transaction", tx.ID, tx.Type)
	}

	// Resolve every input to the output it spends.
	resolved := make([]UnspentOutput, len(tx.Inputs))
	seen := make(map[Outpoint]struct{}, len(tx.Inputs))
	for i, in := range tx.Inputs {
		if _, exists := seen[in.Outpoint]; exists {
			return 0, newRuleError(KindDoubleSpend, "tx[%s]: input %d spends %s twice", tx.ID, i, in.Outpoint)
		}
		seen[in.Outpoint] = struct{}{}

		u, exists := view.Get(in.Outpoint)
		if !exists {
			return 0, newRuleError(KindDoubleSpend, "tx[%s]: input %d references %s which is spent or unknown", tx.ID, i, in.Outpoint)
		}
		resolved[i] = u
	}

	// Every input must be signed by the owner of the output it spends.
	msg := tx.SigHash(h)
	for i, in := range tx.Inputs {
		address, err := signature.AddressFromPublicKeyHex(in.PublicKey)
		if err != nil {
			return 0, newRuleError(KindAuthorization, "tx[%s]: input %d has an invalid public key: %s", tx.ID, i, err)
		}

		if !strings.EqualFold(address, resolved[i].Address) {
			return 0, newRuleError(KindAuthorization, "tx[%s]: input %d public key belongs to %s not %s", tx.ID, i, address, resolved[i].Address)
		}

		if !signature.Verify(in.PublicKey, msg, in.Signature) {
			return 0, newRuleError(KindAuthorization, "tx[%s]: input %d signature does not verify", tx.ID, i)
		}
	}

	// The inputs must cover the outputs and the minimum fee.
	var totalIn uint64
	for _, u := range resolved {
		if totalIn+u.Amount < totalIn {
			return 0, newRuleError(KindStructural, "tx[%s]: inputs overflow the total", tx.ID)
		}
		totalIn += u.Amount
	}

	totalOut, err := tx.TotalOutput()
	if err != nil {
		return 0, err
	}

	if totalIn < totalOut || totalIn-totalOut < policy.FeePerTransaction {
		return 0, newRuleError(KindConservation, "tx[%s]: inputs %d don't cover outputs %d plus fee %d", tx.ID, totalIn, totalOut, policy.FeePerTransaction)
	}

	return totalIn - totalOut, nil
}

// CheckRewardTransaction validates the reward transaction of the block at
// height. It must pay exactly the amount, which is the mining reward plus
// the fees of the block.
func CheckRewardTransaction(h *hasher.Hasher, tx Tx, height uint64, amount uint64) error {
	if err := checkReward(h, tx, height); err != nil {
		return err
	}

	return checkRewardAmount(tx, amount)
}

// checkReward validates the shape of the reward transaction of the block at
// height without looking at the amount it pays.
func checkReward(h *hasher.Hasher, tx Tx, height uint64) error {
	if err := checkShape(h, tx); err != nil {
		return err
	}

	if tx.Type != TxReward {
		return newRuleError(KindStructural, "tx[%s]: first transaction of a block must be the reward", tx.ID)
	}

	if tx.Height != height {
		return newRuleError(KindStructural, "tx[%s]: reward height %d, block height %d", tx.ID, tx.Height, height)
	}

	return nil
}

// checkRewardAmount checks a reward already known to be well formed pays
// the amount.
func checkRewardAmount(tx Tx, amount uint64) error {
	if tx.Outputs[0].Amount != amount {
		return newRuleError(KindConservation, "tx[%s]: reward pays %d, expected %d", tx.ID, tx.Outputs[0].Amount, amount)
	}

	return nil
}

// =============================================================================

// checkShape performs the structural checks that need no ledger state.
func checkShape(h *hasher.Hasher, tx Tx) error {
	switch tx.Type {
	case TxRegular:
		if len(tx.Inputs) == 0 {
			return newRuleError(KindStructural, "tx[%s]: no inputs", tx.ID)
		}
		if len(tx.Outputs) == 0 {
			return newRuleError(KindStructural, "tx[%s]: no outputs", tx.ID)
		}

		for i, in := range tx.Inputs {
			if in.TxID == "" || in.PublicKey == "" || in.Signature == "" {
				return newRuleError(KindStructural, "tx[%s]: input %d is incomplete", tx.ID, i)
			}
		}

	case TxReward:
		if len(tx.Inputs) != 0 {
			return newRuleError(KindStructural, "tx[%s]: reward has inputs", tx.ID)
		}
		if len(tx.Outputs) != 1 {
			return newRuleError(KindStructural, "tx[%s]: reward has %d outputs", tx.ID, len(tx.Outputs))
		}

	default:
		return newRuleError(KindStructural, "tx[%s]: unknown type %q", tx.ID, tx.Type)
	}

	for i, out := range tx.Outputs {
		if out.Amount == 0 {
			return newRuleError(KindStructural, "tx[%s]: output %d amount must be positive", tx.ID, i)
		}
		if !signature.IsAddress(out.Address) {
			return newRuleError(KindStructural, "tx[%s]: output %d address %q is invalid", tx.ID, i, out.Address)
		}
	}

	if _, err := tx.TotalOutput(); err != nil {
		return err
	}

	if id := tx.ComputeID(h); id != tx.ID {
		return newRuleError(KindStructural, "tx[%s]: id does not match content %s", tx.ID, id)
	}

	return nil
}
