// Package database handles all the lower level support for maintaining the
// blockchain in storage and maintaining the in memory index of unspent
// transaction outputs derived from it.
package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/hasher"
)

// ErrNotLonger is returned when a candidate chain is not longer than the
// local chain. Ties keep the local chain.
var ErrNotLonger = errors.New("candidate chain is not longer than the local chain")

// ErrNotFound is returned when a block or transaction doesn't exist.
var ErrNotFound = errors.New("not found")

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// =============================================================================

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain. The
// genesis block is never stored, storage holds the blocks from index 1.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// PendingStore is implemented by storage that can also keep the pending
// transactions so they survive a restart.
type PendingStore interface {
	SavePendingTx(tx Tx) error
	DeletePendingTx(id string) error
	LoadPendingTxs() ([]Tx, error)
}

// =============================================================================

// ledger is the derived state of a chain. A candidate chain is built into
// its own ledger and only replaces the active one once fully validated.
type ledger struct {
	headers     []BlockHeader
	latestBlock Block
	utxo        *UTXOSet
	txIndex     map[string]uint64
}

func newLedger(genesisBlock Block) *ledger {
	return &ledger{
		headers:     []BlockHeader{genesisBlock.Header},
		latestBlock: genesisBlock,
		utxo:        NewUTXOSet(),
		txIndex:     make(map[string]uint64),
	}
}

// Database manages the chain and the index of unspent outputs. Callers must
// serialize the mutating calls, reads can happen at any time. Reads of the
// storage hold the read lock so a chain being replaced is never seen half
// written.
type Database struct {
	mu sync.RWMutex

	hasher       *hasher.Hasher
	genesis      genesis.Genesis
	genesisBlock Block
	evHandler    func(v string, args ...any)
	ledger       *ledger

	storage Storage
}

// New constructs a new database and replays the stored blocks, validating
// each one, to rebuild the index of unspent outputs.
func New(h *hasher.Hasher, gen genesis.Genesis, storage Storage, evHandler func(v string, args ...any)) (*Database, error) {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	genesisBlock := GenesisBlock(h, gen)

	db := Database{
		hasher:       h,
		genesis:      gen,
		genesisBlock: genesisBlock,
		evHandler:    ev,
		storage:      storage,
	}

	l := newLedger(genesisBlock)

	iter := storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		if err := db.applyBlock(l, ToBlock(blockData)); err != nil {
			return nil, fmt.Errorf("replaying block %d: %w", blockData.Header.Index, err)
		}
	}

	db.ledger = l

	return &db, nil
}

// Close closes the storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Storage returns the storage the chain is written to.
func (db *Database) Storage() Storage {
	return db.storage
}

// Policy returns the transaction policy of the ledger.
func (db *Database) Policy() Policy {
	return Policy{FeePerTransaction: db.genesis.FeePerTransaction}
}

// =============================================================================

// Append validates the block as the next block of the chain and, if it
// passes, writes it to storage and applies it to the index. A rejected block
// leaves everything as it was.
func (db *Database) Append(block Block) error {
	db.mu.RLock()
	current := db.ledger
	db.mu.RUnlock()

	// Validate against a private copy of the index so readers keep seeing
	// the current state until the block is accepted.
	next := ledger{
		headers:     current.headers,
		latestBlock: current.latestBlock,
		utxo:        current.utxo.Clone(),
		txIndex:     current.txIndex,
	}

	ids, err := db.checkBlock(&next, block)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Write(NewBlockData(block)); err != nil {
		return fmt.Errorf("writing block %d: %w", block.Header.Index, err)
	}

	supply := current.utxo.Supply()

	headers := make([]BlockHeader, len(current.headers), len(current.headers)+1)
	copy(headers, current.headers)

	current.headers = append(headers, block.Header)
	current.latestBlock = block
	current.utxo = next.utxo
	for _, id := range ids {
		current.txIndex[id] = block.Header.Index
	}

	// Supply only ever grows by the mining reward. Anything else means the
	// index and the chain disagree.
	if got, exp := current.utxo.Supply(), supply+db.genesis.Mining.MiningReward; got != exp {
		return fmt.Errorf("%w: block %d: supply %d, expected %d", ErrInvariant, block.Header.Index, got, exp)
	}

	return nil
}

// Replace validates the candidate chain from genesis into a fresh index and,
// if every block passes and the chain is longer, makes it the chain. The
// first block of the candidate must be our genesis block.
func (db *Database) Replace(blocks []Block) error {
	if len(blocks) == 0 || blocks[0].Hash() != db.genesisBlock.Hash() || db.hasher.ComputeHash(blocks[0].Header) != db.genesisBlock.Hash() {
		return newRuleError(KindValidation, "candidate chain doesn't start at our genesis block")
	}

	if uint64(len(blocks)) <= db.Height()+1 {
		return ErrNotLonger
	}

	l := newLedger(db.genesisBlock)
	for _, block := range blocks[1:] {
		if err := db.applyBlock(l, block); err != nil {
			return fmt.Errorf("candidate block %d: %w", block.Header.Index, err)
		}
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Reset(); err != nil {
		return fmt.Errorf("resetting storage: %w", err)
	}

	for _, block := range blocks[1:] {
		if err := db.storage.Write(NewBlockData(block)); err != nil {
			return fmt.Errorf("%w: writing block %d: %s", ErrInvariant, block.Header.Index, err)
		}
	}

	db.ledger = l

	return nil
}

// CheckTransaction validates a regular transaction against the current index
// hiding the outpoints reported as claimed. A transaction already in the
// chain is rejected as a replay.
func (db *Database) CheckTransaction(tx Tx, claimed ClaimedFunc) (uint64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if _, exists := db.ledger.txIndex[tx.ID]; exists {
		return 0, newRuleError(KindReplay, "tx[%s] already exists in the chain", tx.ID)
	}

	return CheckTransaction(db.hasher, tx, Exclude(db.ledger.utxo, claimed), db.Policy())
}

// =============================================================================

// Genesis returns the genesis block.
func (db *Database) Genesis() Block {
	return db.genesisBlock
}

// LatestBlock returns the latest block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.ledger.latestBlock
}

// Height returns the index of the latest block.
func (db *Database) Height() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.ledger.latestBlock.Header.Index
}

// NextTarget returns the target the next block must meet.
func (db *Database) NextTarget() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return Target(db.genesis.ProofOfWork, db.ledger.latestBlock.Header.Index+1, db.ledger.headers)
}

// HasTx reports if the transaction is in the chain.
func (db *Database) HasTx(id string) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, exists := db.ledger.txIndex[id]
	return exists
}

// TxBlock returns the block holding the transaction.
func (db *Database) TxBlock(id string) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	index, exists := db.ledger.txIndex[id]
	if !exists {
		return Block{}, ErrNotFound
	}

	return db.getBlock(index)
}

// UnspentForAddress returns the unspent outputs owned by the address.
func (db *Database) UnspentForAddress(address string) []UnspentOutput {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.ledger.utxo.ForAddress(address)
}

// Balance returns the balance of the address.
func (db *Database) Balance(address string) uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.ledger.utxo.Balance(address)
}

// UTXO returns a copy of the index of unspent outputs.
func (db *Database) UTXO() *UTXOSet {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.ledger.utxo.Clone()
}

// Supply returns the total amount of unspent outputs.
func (db *Database) Supply() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.ledger.utxo.Supply()
}

// Blocks returns the blocks from the from index up to the to index, both
// included. The to index is capped at the latest block and QueryLatest
// stands for the latest block. Block zero is the genesis block.
func (db *Database) Blocks(from uint64, to uint64) ([]Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	latest := db.ledger.latestBlock.Header.Index

	if from == QueryLatest {
		from = latest
	}
	if to == QueryLatest || to > latest {
		to = latest
	}

	var out []Block
	for i := from; i <= to; i++ {
		block, err := db.getBlock(i)
		if err != nil {
			return nil, err
		}
		out = append(out, block)
	}

	return out, nil
}

// GetBlock searches the blockchain in storage to locate and return the
// contents of the specified block by number.
func (db *Database) GetBlock(num uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.getBlock(num)
}

// getBlock reads the block from storage. The caller holds the lock.
func (db *Database) getBlock(num uint64) (Block, error) {
	if num == 0 {
		return db.genesisBlock, nil
	}

	blockData, err := db.storage.GetBlock(num)
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData), nil
}

// =============================================================================

// applyBlock validates the block on top of the ledger and applies it.
func (db *Database) applyBlock(l *ledger, block Block) error {
	supply := l.utxo.Supply()

	ids, err := db.checkBlock(l, block)
	if err != nil {
		return err
	}

	l.headers = append(l.headers, block.Header)
	l.latestBlock = block
	for _, id := range ids {
		l.txIndex[id] = block.Header.Index
	}

	if got, exp := l.utxo.Supply(), supply+db.genesis.Mining.MiningReward; got != exp {
		return fmt.Errorf("%w: block %d: supply %d, expected %d", ErrInvariant, block.Header.Index, got, exp)
	}

	return nil
}

// checkBlock validates the block on top of the ledger, applying its
// transactions to the index of the ledger in block order so a transaction can
// spend an output created earlier in the same block. It doesn't touch the
// headers or the tx index, it returns the ids to add on success.
func (db *Database) checkBlock(l *ledger, block Block) ([]string, error) {
	target := Target(db.genesis.ProofOfWork, block.Header.Index, l.headers)
	if err := block.ValidateBlock(db.hasher, l.latestBlock, target, db.evHandler); err != nil {
		return nil, err
	}

	policy := db.Policy()
	seen := make(map[string]struct{}, len(block.Trans))
	ids := make([]string, 0, len(block.Trans))

	unique := func(tx Tx) error {
		if _, exists := l.txIndex[tx.ID]; exists {
			return newRuleError(KindReplay, "tx[%s] already exists in the chain", tx.ID)
		}
		if _, exists := seen[tx.ID]; exists {
			return newRuleError(KindReplay, "tx[%s] appears twice in block %d", tx.ID, block.Header.Index)
		}
		seen[tx.ID] = struct{}{}
		ids = append(ids, tx.ID)
		return nil
	}

	// The reward goes into the index first so the transactions of the block
	// can spend it. What it pays is checked once the fees are known.
	reward := block.Trans[0]
	if err := unique(reward); err != nil {
		return nil, err
	}

	if err := checkReward(db.hasher, reward, block.Header.Index); err != nil {
		return nil, err
	}

	if err := l.utxo.Apply(reward); err != nil {
		return nil, err
	}

	var fees uint64
	for _, tx := range block.Trans[1:] {
		db.evHandler("database: checkBlock: blk[%d]: tx[%s]", block.Header.Index, tx.ID)

		if err := unique(tx); err != nil {
			return nil, err
		}

		fee, err := CheckTransaction(db.hasher, tx, l.utxo, policy)
		if err != nil {
			return nil, err
		}

		if err := l.utxo.Apply(tx); err != nil {
			return nil, err
		}
		fees += fee
	}

	if err := checkRewardAmount(reward, db.genesis.Mining.MiningReward+fees); err != nil {
		return nil, err
	}

	return ids, nil
}
