// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	v1 "github.com/ardanlabs/naivecoin/business/web/v1"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/signature"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/state"
	"github.com/ardanlabs/naivecoin/foundation/events"
	"github.com/ardanlabs/naivecoin/foundation/nameservice"
	"github.com/ardanlabs/naivecoin/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints for wallets and viewers.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the blockchain. The
	// topic query parameter limits them to a comma separated list of sources,
	// for example ?topic=viewer for the new blocks only.
	var topics []string
	if topic := r.URL.Query().Get("topic"); topic != "" {
		topics = strings.Split(topic, ",")
	}

	ch := h.Evts.Acquire(v.TraceID, topics...)
	defer func() {
		h.Evts.Release(v.TraceID)
		h.Log.Infow("events", "traceid", v.TraceID, "topics", topics, "dropped", h.Evts.Dropped())
	}()

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting to receive events and send them to the client.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitWalletTransaction adds a signed wallet transaction to the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx database.Tx
	if err := web.Decode(r, &tx); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("add tran", "traceid", v.TraceID, "tx", tx, "inputs", len(tx.Inputs), "outputs", len(tx.Outputs))
	if err := h.State.AddTransaction(tx); err != nil {
		return v1.NewLedgerError(err)
	}

	resp := struct {
		Status string `json:"status"`
		ID     string `json:"id"`
	}{
		Status: "transaction added to mempool",
		ID:     tx.ID,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Genesis genesis.Genesis `json:"genesis"`
		Block   block           `json:"block"`
	}{
		Genesis: h.State.Genesis(),
		Block:   toBlock(h.NS, h.State.GenesisBlock()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Status returns the chain summary of this node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.LatestBlock()

	st := status{
		LatestBlockHash:  latest.Hash(),
		LatestBlockIndex: latest.Header.Index,
		Supply:           h.State.Supply(),
		Uncommitted:      h.State.MempoolLength(),
	}
	if err := h.State.Halted(); err != nil {
		st.Halted = err.Error()
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions. An address filters
// the list to the transactions paying that address.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	mempool := h.State.Mempool()

	trans := []tx{}
	for _, t := range mempool {
		if address != "" && !pays(t, address) {
			continue
		}
		trans = append(trans, toTx(h.NS, t))
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Balance returns the balance and unspent outputs of an address.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")
	if !signature.IsAddress(address) {
		return v1.NewRequestError(fmt.Errorf("invalid address %q", address), http.StatusBadRequest)
	}

	resp := balance{
		Address:     address,
		Name:        h.NS.Lookup(address),
		Balance:     h.State.Balance(address),
		Unspent:     nonNil(h.State.UnspentForAddress(address)),
		Spendable:   nonNil(h.State.UnclaimedForAddress(address)),
		LatestBlock: h.State.LatestBlock().Hash(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksByNumber returns the blocks between the specified numbers.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := blockNumber(web.Param(r, "from"))
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	to, err := blockNumber(web.Param(r, "to"))
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	if from > to {
		return v1.NewRequestError(errors.New("from greater than to"), http.StatusBadRequest)
	}

	blocks, err := h.State.Blocks(from, to)
	if err != nil {
		return v1.NewLedgerError(err)
	}

	out := make([]block, len(blocks))
	for i, b := range blocks {
		out[i] = toBlock(h.NS, b)
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// TxProof returns the merkle proof a transaction was included in a block.
func (h Handlers) TxProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	blk, prf, order, err := h.State.TxProof(id)
	if err != nil {
		return v1.NewLedgerError(err)
	}

	resp := proof{
		TxID:       id,
		BlockIndex: blk.Header.Index,
		BlockHash:  blk.Hash(),
		TransRoot:  blk.Header.TransRoot,
		Proof:      prf,
		Order:      order,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

func blockNumber(s string) (uint64, error) {
	if s == "" || s == "latest" {
		return state.QueryLatest, nil
	}

	num, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block number %q", s)
	}

	return num, nil
}

func pays(t database.Tx, address string) bool {
	for _, out := range t.Outputs {
		if strings.EqualFold(out.Address, address) {
			return true
		}
	}
	return false
}

func nonNil(list []database.UnspentOutput) []database.UnspentOutput {
	if list == nil {
		return []database.UnspentOutput{}
	}
	return list
}
