package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/peer"
)

// ErrNoNetwork is returned when the node was started without a network.
var ErrNoNetwork = errors.New("no network configured")

// NetSendBlockToPeers takes the new mined block and sends it to all know peers.
func (s *State) NetSendBlockToPeers(ctx context.Context, block database.Block) error {
	s.evHandler("state: NetSendBlockToPeers: started")
	defer s.evHandler("state: NetSendBlockToPeers: completed")

	if s.network == nil {
		return ErrNoNetwork
	}

	var errs []error
	for _, pr := range s.KnownPeers() {
		if err := s.network.SendBlock(ctx, pr, block); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", pr.Host, err))
			continue
		}

		s.evHandler("state: NetSendBlockToPeers: sent to peer[%s]", pr)
	}

	return errors.Join(errs...)
}

// NetSendTxToPeers shares a new transaction with the known peers.
func (s *State) NetSendTxToPeers(ctx context.Context, tx database.Tx) {
	s.evHandler("state: NetSendTxToPeers: started")
	defer s.evHandler("state: NetSendTxToPeers: completed")

	if s.network == nil {
		return
	}

	// The full transaction is sent to every peer. A peer that already has it
	// rejects it as a replay.
	for _, pr := range s.KnownPeers() {
		if err := s.network.SendTx(ctx, pr, tx); err != nil {
			s.evHandler("state: NetSendTxToPeers: WARNING: %s: %s", pr, err)
		}
	}
}

// NetRequestPeerStatus asks the peer for its status. The peers it knows are
// added to the known peers.
func (s *State) NetRequestPeerStatus(ctx context.Context, pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr)

	if s.network == nil {
		return peer.PeerStatus{}, ErrNoNetwork
	}

	ps, err := s.network.RequestStatus(ctx, pr)
	if err != nil {
		return peer.PeerStatus{}, err
	}

	for _, known := range ps.KnownPeers {
		if s.AddKnownPeer(known) {
			s.evHandler("state: NetRequestPeerStatus: add peer[%s]", known)
		}
	}

	return ps, nil
}

// NetRequestPeerMempool asks the peer for the transactions in their mempool
// and adds the ones that are valid here.
func (s *State) NetRequestPeerMempool(ctx context.Context, pr peer.Peer) error {
	s.evHandler("state: NetRequestPeerMempool: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerMempool: completed: %s", pr)

	if s.network == nil {
		return ErrNoNetwork
	}

	txs, err := s.network.RequestMempool(ctx, pr)
	if err != nil {
		return err
	}

	for _, tx := range txs {
		if err := s.addTransaction(tx); err != nil {
			s.evHandler("state: NetRequestPeerMempool: tx[%s]: skipped: %s", tx, err)
		}
	}

	return nil
}

// NetRequestPeerChain asks the peer for its full chain and replaces the
// local chain with it when it is longer and valid.
func (s *State) NetRequestPeerChain(ctx context.Context, pr peer.Peer) error {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr)

	if s.network == nil {
		return ErrNoNetwork
	}

	blocks, err := s.network.RequestBlocks(ctx, pr, 0)
	if err != nil {
		return err
	}

	s.evHandler("state: NetRequestPeerChain: found blocks[%d]", len(blocks))

	return s.ReplaceChain(blocks)
}
