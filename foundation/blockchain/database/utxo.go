package database

import (
	"sort"
	"strings"
)

// UnspentOutput is an output no confirmed input has consumed yet.
type UnspentOutput struct {
	TxID    string `json:"tx_id"`
	Index   uint32 `json:"index"`
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

// Outpoint returns the reference used to spend this output.
func (u UnspentOutput) Outpoint() Outpoint {
	return Outpoint{TxID: u.TxID, Index: u.Index}
}

// =============================================================================

// UTXOView is the read behavior transaction checks need from an index of
// unspent outputs.
type UTXOView interface {
	Get(op Outpoint) (UnspentOutput, bool)
}

// ClaimedFunc reports whether an outpoint is already claimed by something
// outside the view, such as a pending transaction.
type ClaimedFunc func(op Outpoint) bool

// Exclude returns a view that hides the outpoints reported as claimed.
func Exclude(view UTXOView, claimed ClaimedFunc) UTXOView {
	if claimed == nil {
		return view
	}

	return excludeView{view: view, claimed: claimed}
}

type excludeView struct {
	view    UTXOView
	claimed ClaimedFunc
}

func (ev excludeView) Get(op Outpoint) (UnspentOutput, bool) {
	if ev.claimed(op) {
		return UnspentOutput{}, false
	}

	return ev.view.Get(op)
}

// =============================================================================

// UTXOSet is the index of unspent outputs. It is derived by applying the
// transactions of the chain in order and is never edited any other way.
type UTXOSet struct {
	outputs map[Outpoint]UnspentOutput
}

// NewUTXOSet constructs an empty index.
func NewUTXOSet() *UTXOSet {
	return &UTXOSet{
		outputs: make(map[Outpoint]UnspentOutput),
	}
}

// Get returns the unspent output for the outpoint.
func (us *UTXOSet) Get(op Outpoint) (UnspentOutput, bool) {
	u, exists := us.outputs[op]
	return u, exists
}

// Has reports if the outpoint is unspent.
func (us *UTXOSet) Has(op Outpoint) bool {
	_, exists := us.outputs[op]
	return exists
}

// Len returns the number of unspent outputs.
func (us *UTXOSet) Len() int {
	return len(us.outputs)
}

// Apply consumes the outputs spent by the transaction and adds the outputs
// it creates. Every input is checked before anything changes so a failed
// apply leaves the index untouched.
func (us *UTXOSet) Apply(tx Tx) error {
	for _, in := range tx.Inputs {
		if !us.Has(in.Outpoint) {
			return newRuleError(KindDoubleSpend, "tx[%s]: outpoint %s is not unspent", tx.ID, in.Outpoint)
		}
	}

	for _, in := range tx.Inputs {
		delete(us.outputs, in.Outpoint)
	}

	for i, out := range tx.Outputs {
		op := Outpoint{TxID: tx.ID, Index: uint32(i)}
		us.outputs[op] = UnspentOutput{
			TxID:    tx.ID,
			Index:   uint32(i),
			Address: out.Address,
			Amount:  out.Amount,
		}
	}

	return nil
}

// Clone returns an independent copy of the index.
func (us *UTXOSet) Clone() *UTXOSet {
	outputs := make(map[Outpoint]UnspentOutput, len(us.outputs))
	for op, u := range us.outputs {
		outputs[op] = u
	}

	return &UTXOSet{outputs: outputs}
}

// ForAddress returns the unspent outputs owned by the address ordered by
// transaction id and index.
func (us *UTXOSet) ForAddress(address string) []UnspentOutput {
	var list []UnspentOutput
	for _, u := range us.outputs {
		if strings.EqualFold(u.Address, address) {
			list = append(list, u)
		}
	}

	sortUnspent(list)

	return list
}

// Balance returns the sum of the unspent outputs owned by the address.
func (us *UTXOSet) Balance(address string) uint64 {
	var balance uint64
	for _, u := range us.outputs {
		if strings.EqualFold(u.Address, address) {
			balance += u.Amount
		}
	}

	return balance
}

// Supply returns the sum of every unspent output.
func (us *UTXOSet) Supply() uint64 {
	var supply uint64
	for _, u := range us.outputs {
		supply += u.Amount
	}

	return supply
}

// Values returns every unspent output ordered by transaction id and index.
func (us *UTXOSet) Values() []UnspentOutput {
	list := make([]UnspentOutput, 0, len(us.outputs))
	for _, u := range us.outputs {
		list = append(list, u)
	}

	sortUnspent(list)

	return list
}

func sortUnspent(list []UnspentOutput) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].TxID != list[j].TxID {
			return list[i].TxID < list[j].TxID
		}
		return list[i].Index < list[j].Index
	})
}
