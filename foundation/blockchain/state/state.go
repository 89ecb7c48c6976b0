// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/hasher"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/mempool"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/peer"
)

// ErrHalted is returned by every mutation once the ledger detected that the
// chain and the index of unspent outputs disagree.
var ErrHalted = errors.New("ledger halted after an invariant violation")

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, peer updates, and transaction sharing.
type Worker interface {
	Shutdown()
	Sync()
	SignalStartMining()
	SignalCancelMining() (done func())
	SignalShareTx(tx database.Tx)
	SignalShareBlock(block database.Block)
}

// Network interface represents the behavior required to be implemented by any
// package providing support for talking to peers.
type Network interface {
	SendBlock(ctx context.Context, pr peer.Peer, block database.Block) error
	SendTx(ctx context.Context, pr peer.Peer, tx database.Tx) error
	RequestStatus(ctx context.Context, pr peer.Peer) (peer.PeerStatus, error)
	RequestBlocks(ctx context.Context, pr peer.Peer, from uint64) ([]database.Block, error)
	RequestMempool(ctx context.Context, pr peer.Peer) ([]database.Tx, error)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Beneficiary    string
	Host           string
	Storage        database.Storage
	Genesis        genesis.Genesis
	SelectStrategy string
	KnownPeers     *peer.PeerSet
	Network        Network
	EvHandler      EventHandler
}

// State manages the blockchain database.
type State struct {
	mu     sync.Mutex
	halted error

	beneficiary string
	host        string
	evHandler   EventHandler

	hasher     *hasher.Hasher
	knownPeers *peer.PeerSet
	genesis    genesis.Genesis
	mempool    *mempool.Mempool
	db         *database.Database
	pending    database.PendingStore
	network    Network

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	h := hasher.New()

	// Access the storage for the blockchain, replaying and validating every
	// block to rebuild the index of unspent outputs.
	db, err := database.New(h, cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	// Construct a mempool with the specified select strategy.
	mempool, err := mempool.NewWithStrategy(cfg.SelectStrategy)
	if err != nil {
		return nil, err
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		beneficiary: cfg.Beneficiary,
		host:        cfg.Host,
		evHandler:   ev,

		hasher:     h,
		knownPeers: knownPeers,
		genesis:    cfg.Genesis,
		mempool:    mempool,
		db:         db,
		network:    cfg.Network,
	}

	// Storage that can keep pending transactions gives them back so they
	// are not lost on a restart. They are validated again like any other.
	if pending, ok := cfg.Storage.(database.PendingStore); ok {
		state.pending = pending

		txs, err := pending.LoadPendingTxs()
		if err != nil {
			return nil, fmt.Errorf("loading pending transactions: %w", err)
		}

		for _, tx := range txs {
			if err := state.upsertMempool(tx); err != nil {
				ev("state: New: pending tx[%s] dropped: %s", tx, err)
				pending.DeletePendingTx(tx.ID)
			}
		}
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Make sure the database file is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// halt stops every further mutation. The caller must hold the lock.
func (s *State) halt(err error) error {
	s.halted = err
	s.evHandler("state: HALTED: %s", err)

	return fmt.Errorf("%w: %s", ErrHalted, err)
}

// checkHalted returns ErrHalted if the ledger was halted. The caller must
// hold the lock.
func (s *State) checkHalted() error {
	if s.halted != nil {
		return fmt.Errorf("%w: %s", ErrHalted, s.halted)
	}

	return nil
}
