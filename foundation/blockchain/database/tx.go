package database

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/hasher"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common"
)

// TxType separates regular transfers from the block reward.
type TxType string

// Set of transaction types.
const (
	TxRegular TxType = "regular"
	TxReward  TxType = "reward"
)

// =============================================================================

// Outpoint references an output of a prior transaction.
type Outpoint struct {
	TxID  string `json:"tx_id"`
	Index uint32 `json:"index"`
}

// String implements the fmt.Stringer interface for logging.
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID, o.Index)
}

// TxInput spends an output. The public key must map to the address of the
// output and the signature must be over the signing hash of the transaction.
type TxInput struct {
	Outpoint
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// TxOutput credits an amount to an address.
type TxOutput struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

// =============================================================================

// Tx is a transfer of value between addresses. The reward transaction has no
// inputs and carries the height of its block so every reward has its own id.
type Tx struct {
	ID      string     `json:"id"`
	Type    TxType     `json:"type"`
	Height  uint64     `json:"height"`
	Inputs  []TxInput  `json:"inputs"`
	Outputs []TxOutput `json:"outputs"`
}

// NewTx constructs an unsigned regular transaction spending the outpoints.
func NewTx(outpoints []Outpoint, outputs []TxOutput) Tx {
	inputs := make([]TxInput, len(outpoints))
	for i, op := range outpoints {
		inputs[i] = TxInput{Outpoint: op}
	}

	return Tx{
		Type:    TxRegular,
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// NewRewardTx constructs the reward transaction for the block at height.
func NewRewardTx(h *hasher.Hasher, height uint64, address string, amount uint64) Tx {
	tx := Tx{
		Type:    TxReward,
		Height:  height,
		Inputs:  []TxInput{},
		Outputs: []TxOutput{{Address: address, Amount: amount}},
	}
	tx.ID = tx.ComputeID(h)

	return tx
}

// Sign signs every input with the private key at the same position and sets
// the transaction id.
func (tx Tx) Sign(h *hasher.Hasher, privateKeys []*ecdsa.PrivateKey) (Tx, error) {
	if len(privateKeys) != len(tx.Inputs) {
		return Tx{}, fmt.Errorf("got %d keys for %d inputs", len(privateKeys), len(tx.Inputs))
	}

	msg := tx.SigHash(h)

	inputs := make([]TxInput, len(tx.Inputs))
	for i, in := range tx.Inputs {
		sig, err := signature.Sign(msg, privateKeys[i])
		if err != nil {
			return Tx{}, fmt.Errorf("signing input %d: %w", i, err)
		}

		in.PublicKey = signature.PublicKeyHex(privateKeys[i].PublicKey)
		in.Signature = sig
		inputs[i] = in
	}

	tx.Inputs = inputs
	tx.ID = tx.ComputeID(h)

	return tx, nil
}

// SigHash returns the message each input signs. It commits to the spent
// outpoints and the outputs but not to the keys and signatures.
func (tx Tx) SigHash(h *hasher.Hasher) []byte {
	outpoints := make([]Outpoint, len(tx.Inputs))
	for i, in := range tx.Inputs {
		outpoints[i] = in.Outpoint
	}
	outputs := tx.Outputs
	if outputs == nil {
		outputs = []TxOutput{}
	}

	return h.ComputeHashBytes(struct {
		Type    TxType     `json:"type"`
		Height  uint64     `json:"height"`
		Inputs  []Outpoint `json:"inputs"`
		Outputs []TxOutput `json:"outputs"`
	}{
		Type:    tx.Type,
		Height:  tx.Height,
		Inputs:  outpoints,
		Outputs: outputs,
	})
}

// ComputeID returns the canonical hash of the transaction content. A nil
// list and an empty list hash the same so the id survives any encoding.
func (tx Tx) ComputeID(h *hasher.Hasher) string {
	inputs := tx.Inputs
	if inputs == nil {
		inputs = []TxInput{}
	}
	outputs := tx.Outputs
	if outputs == nil {
		outputs = []TxOutput{}
	}

	return h.ComputeHash(struct {
		Type    TxType     `json:"type"`
		Height  uint64     `json:"height"`
		Inputs  []TxInput  `json:"inputs"`
		Outputs []TxOutput `json:"outputs"`
	}{
		Type:    tx.Type,
		Height:  tx.Height,
		Inputs:  inputs,
		Outputs: outputs,
	})
}

// TotalOutput returns the sum of the output amounts. Overflow is reported
// as a structural error.
func (tx Tx) TotalOutput() (uint64, error) {
	var total uint64
	for i, out := range tx.Outputs {
		if total+out.Amount < total {
			return 0, newRuleError(KindStructural, "output %d overflows the total", i)
		}
		total += out.Amount
	}

	return total, nil
}

// Hash implements the merkle Hashable interface.
func (tx Tx) Hash() ([]byte, error) {
	return common.FromHex(tx.ID), nil
}

// Equals implements the merkle Hashable interface. Two transactions with the
// same id are the same transaction.
func (tx Tx) Equals(otherTx Tx) bool {
	return tx.ID == otherTx.ID
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s", tx.Type, tx.ID)
}
