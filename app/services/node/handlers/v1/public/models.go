package public

import (
	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/nameservice"
)

type status struct {
	LatestBlockHash  string `json:"latest_block_hash"`
	LatestBlockIndex uint64 `json:"latest_block_index"`
	Supply           uint64 `json:"supply"`
	Uncommitted      int    `json:"uncommitted"`
	Halted           string `json:"halted,omitempty"`
}

type output struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Amount  uint64 `json:"amount"`
}

type tx struct {
	ID      string             `json:"id"`
	Type    database.TxType    `json:"type"`
	Height  uint64             `json:"height"`
	Inputs  []database.TxInput `json:"inputs"`
	Outputs []output           `json:"outputs"`
}

type block struct {
	Hash   string               `json:"hash"`
	Header database.BlockHeader `json:"block"`
	Trans  []tx                 `json:"trans"`
}

type balance struct {
	Address     string                   `json:"address"`
	Name        string                   `json:"name"`
	Balance     uint64                   `json:"balance"`
	Unspent     []database.UnspentOutput `json:"unspent"`
	Spendable   []database.UnspentOutput `json:"spendable"`
	LatestBlock string                   `json:"latest_block"`
}

type proof struct {
	TxID       string   `json:"tx_id"`
	BlockIndex uint64   `json:"block_index"`
	BlockHash  string   `json:"block_hash"`
	TransRoot  string   `json:"trans_root"`
	Proof      []string `json:"proof"`
	Order      []int64  `json:"order"`
}

// =============================================================================

func toTx(ns *nameservice.NameService, t database.Tx) tx {
	outs := make([]output, len(t.Outputs))
	for i, out := range t.Outputs {
		outs[i] = output{
			Address: out.Address,
			Name:    ns.Lookup(out.Address),
			Amount:  out.Amount,
		}
	}

	return tx{
		ID:      t.ID,
		Type:    t.Type,
		Height:  t.Height,
		Inputs:  t.Inputs,
		Outputs: outs,
	}
}

func toBlock(ns *nameservice.NameService, b database.Block) block {
	trans := make([]tx, len(b.Trans))
	for i, t := range b.Trans {
		trans[i] = toTx(ns, t)
	}

	return block{
		Hash:   b.Hash(),
		Header: b.Header,
		Trans:  trans,
	}
}
