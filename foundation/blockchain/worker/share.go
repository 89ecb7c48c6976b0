package worker

import (
	"context"
	"time"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
)

// shareTimeout bounds the time spent sharing with all the peers.
const shareTimeout = 30 * time.Second

// shareTxOperations handles sharing new transactions.
func (w *Worker) shareTxOperations() {
	w.evHandler("worker: shareTxOperations: G started")
	defer w.evHandler("worker: shareTxOperations: G completed")

	for {
		select {
		case tx := <-w.txSharing:
			if !w.isShutdown() {
				w.runShareTxOperation(tx)
			}
		case <-w.shut:
			w.evHandler("worker: shareTxOperations: received shut signal")
			return
		}
	}
}

// runShareTxOperation shares a new transaction with the known peers.
func (w *Worker) runShareTxOperation(tx database.Tx) {
	w.evHandler("worker: runShareTxOperation: started")
	defer w.evHandler("worker: runShareTxOperation: completed")

	ctx, cancel := context.WithTimeout(context.Background(), shareTimeout)
	defer cancel()

	w.state.NetSendTxToPeers(ctx, tx)
}

// =============================================================================

// shareBlockOperations handles sharing new mined blocks.
func (w *Worker) shareBlockOperations() {
	w.evHandler("worker: shareBlockOperations: G started")
	defer w.evHandler("worker: shareBlockOperations: G completed")

	for {
		select {
		case block := <-w.blockSharing:
			if !w.isShutdown() {
				w.runShareBlockOperation(block)
			}
		case <-w.shut:
			w.evHandler("worker: shareBlockOperations: received shut signal")
			return
		}
	}
}

// runShareBlockOperation proposes a new block to the known peers. A peer
// that rejects it will catch up on its next sync.
func (w *Worker) runShareBlockOperation(block database.Block) {
	w.evHandler("worker: runShareBlockOperation: started")
	defer w.evHandler("worker: runShareBlockOperation: completed")

	ctx, cancel := context.WithTimeout(context.Background(), shareTimeout)
	defer cancel()

	if err := w.state.NetSendBlockToPeers(ctx, block); err != nil {
		w.evHandler("worker: runShareBlockOperation: WARNING: %s", err)
	}
}
