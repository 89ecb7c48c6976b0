package worker

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/state"
)

// syncTimeout bounds the time spent syncing with a single peer.
const syncTimeout = time.Minute

// peerOperations handles finding new peers and longer chains.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.Sync()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// Sync updates the peer list, mempool and chain from every known peer. A
// peer that doesn't answer is removed from the known peers.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, pr := range w.state.KnownPeers() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)

		// Retrieve the status of this peer. This adds the peers it knows.
		peerStatus, err := w.state.NetRequestPeerStatus(ctx, pr)
		if err != nil {
			w.evHandler("worker: sync: requestPeerStatus: %s: ERROR: %s", pr, err)
			if !errors.Is(err, state.ErrNoNetwork) {
				w.state.RemoveKnownPeer(pr)
			}
			cancel()
			continue
		}

		// If this peer has a longer chain, it becomes our chain once every
		// block of it is validated.
		if peerStatus.LatestBlockIndex > w.state.LatestBlock().Header.Index {
			w.evHandler("worker: sync: requestPeerChain: %s: latestBlockIndex[%d]", pr, peerStatus.LatestBlockIndex)

			err := w.state.NetRequestPeerChain(ctx, pr)
			switch {
			case errors.Is(err, database.ErrNotLonger):
				w.evHandler("worker: sync: requestPeerChain: %s: chain is no longer ahead", pr)
			case err != nil:
				w.evHandler("worker: sync: requestPeerChain: %s: ERROR: %s", pr, err)
			}
		}

		// Retrieve the mempool from the peer.
		if peerStatus.MempoolCount > 0 {
			if err := w.state.NetRequestPeerMempool(ctx, pr); err != nil {
				w.evHandler("worker: sync: requestPeerMempool: %s: ERROR: %s", pr, err)
			}
		}

		cancel()
	}

	if w.state.MempoolLength() > 0 {
		w.SignalStartMining()
	}
}
