// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
)

// Memory represents the serialization implementation for reading and storing
// blocks in memory using a slice. This implements the database.Storage and
// database.PendingStore interfaces.
type Memory struct {
	mu      sync.RWMutex
	blocks  []database.BlockData
	pending map[string]database.Tx
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{
		pending: make(map[string]database.Tx),
	}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified block and stores it in memory. Blocks must be
// written in order starting with block number 1.
func (m *Memory) Write(blockData database.BlockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if exp := uint64(len(m.blocks)) + 1; blockData.Header.Index != exp {
		return fmt.Errorf("block %d is out of order, expecting %d", blockData.Header.Index, exp)
	}

	m.blocks = append(m.blocks, blockData)

	return nil
}

// GetBlock searches the blockchain to locate and return the contents of
// the specified block by number.
func (m *Memory) GetBlock(num uint64) (database.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if num == 0 || num > uint64(len(m.blocks)) {
		return database.BlockData{}, database.ErrNotFound
	}

	return m.blocks[num-1], nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 1.
func (m *Memory) ForEach() database.Iterator {
	return &memoryIterator{storage: m}
}

// Reset will clear out the blockchain.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = nil
	return nil
}

// =============================================================================

// SavePendingTx keeps the pending transaction.
func (m *Memory) SavePendingTx(tx database.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending[tx.ID] = tx
	return nil
}

// DeletePendingTx removes the pending transaction.
func (m *Memory) DeletePendingTx(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pending, id)
	return nil
}

// LoadPendingTxs returns the pending transactions ordered by id.
func (m *Memory) LoadPendingTxs() ([]database.Tx, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txs := make([]database.Tx, 0, len(m.pending))
	for _, tx := range m.pending {
		txs = append(txs, tx)
	}

	sort.Slice(txs, func(i, j int) bool {
		return txs[i].ID < txs[j].ID
	})

	return txs, nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through the blocks in memory. This implements the database
// Iterator interface.
type memoryIterator struct {
	storage *Memory // Access to the storage API.
	current uint64  // Current block number being iterated over.
	eoc     bool    // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block.
func (mi *memoryIterator) Next() (database.BlockData, error) {
	if mi.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	mi.current++
	blockData, err := mi.storage.GetBlock(mi.current)
	if errors.Is(err, database.ErrNotFound) {
		mi.eoc = true
	}

	return blockData, err
}

// Done returns the end of chain value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}
