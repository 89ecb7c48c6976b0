// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	v1 "github.com/ardanlabs/naivecoin/business/web/v1"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/state"
	"github.com/ardanlabs/naivecoin/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// SubmitNodeTransaction adds a transaction shared by a peer to the mempool.
func (h Handlers) SubmitNodeTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Decode the JSON in the post call into a transaction.
	var tx database.Tx
	if err := web.Decode(r, &tx); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	// Ask the state package to add this transaction to the mempool. A peer
	// shared it so it is not shared again.
	h.Log.Infow("add peer tran", "traceid", v.TraceID, "tx", tx)
	if err := h.State.AddPeerTransaction(tx); err != nil {
		return v1.NewLedgerError(err)
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// ProposeBlock takes a block received from a peer, validates it and
// if that passes, adds the block to the local blockchain.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Decode the JSON in the post call into block data.
	var blockData database.BlockData
	if err := web.Decode(r, &blockData); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	block := database.ToBlock(blockData)
	latest := h.State.LatestBlock()

	// Ask the state package to validate the proposed block. If the block
	// passes validation, it will be added to the blockchain database.
	if err := h.State.AddBlock(block); err != nil {

		// A block past our next index means a peer is ahead of us. The
		// worker will fetch its chain.
		if block.Header.Index > latest.Header.Index+1 && h.State.Worker != nil {
			h.Log.Infow("propose block", "traceid", v.TraceID, "status", "peer ahead, resync", "index", block.Header.Index)
			go h.State.Worker.Sync()
		}

		return v1.NewLedgerError(err)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Status(), http.StatusOK)
}

// BlocksByNumber returns the blocks from the specified number to the
// latest block. Block zero is the genesis block.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := strconv.ParseUint(web.Param(r, "from"), 10, 64)
	if err != nil {
		return v1.NewRequestError(fmt.Errorf("invalid block number: %w", err), http.StatusBadRequest)
	}

	blocks, err := h.State.Blocks(from, state.QueryLatest)
	if err != nil {
		return v1.NewLedgerError(err)
	}

	blocksData := make([]database.BlockData, len(blocks))
	for i, block := range blocks {
		blocksData[i] = database.NewBlockData(block)
	}

	return web.Respond(ctx, w, blocksData, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs := h.State.Mempool()
	if txs == nil {
		txs = []database.Tx{}
	}

	return web.Respond(ctx, w, txs, http.StatusOK)
}

// MineBlock mines a block right away with the best pending transactions, or
// the reward alone when there are none, and proposes it to the peers.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.MineNewBlock(ctx)
	if err != nil {
		return v1.NewLedgerError(err)
	}

	if h.State.Worker != nil {
		h.State.Worker.SignalShareBlock(block)
	}

	return web.Respond(ctx, w, database.NewBlockData(block), http.StatusOK)
}
