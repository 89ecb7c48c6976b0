// Package badger implements the ability to read and write blocks to a
// badger key value store.
package badger

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/timshannon/badgerhold/v4"
)

// Badger represents the serialization implementation for reading and storing
// blocks in a badger store. Blocks are keyed by number and pending
// transactions by id. This implements the database.Storage and
// database.PendingStore interfaces.
type Badger struct {
	store *badgerhold.Store
}

// New opens the store in the directory, creating it if needed.
func New(dbDir string) (*Badger, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil
	opts.Compression = options.ZSTD

	store, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, fmt.Errorf("opening badger store: %w", err)
	}

	return &Badger{store: store}, nil
}

// Close closes the store.
func (b *Badger) Close() error {
	return b.store.Close()
}

// Write stores the block under its number.
func (b *Badger) Write(blockData database.BlockData) error {
	return b.store.Upsert(blockData.Header.Index, blockData)
}

// GetBlock returns the block stored under the number.
func (b *Badger) GetBlock(num uint64) (database.BlockData, error) {
	var blockData database.BlockData
	if err := b.store.Get(num, &blockData); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return database.BlockData{}, fmt.Errorf("block %d: %w", num, database.ErrNotFound)
		}
		return database.BlockData{}, err
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 1.
func (b *Badger) ForEach() database.Iterator {
	return &badgerIterator{storage: b}
}

// Reset removes every block. Pending transactions are kept.
func (b *Badger) Reset() error {
	for num := uint64(1); ; num++ {
		err := b.store.Delete(num, database.BlockData{})
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// =============================================================================

// SavePendingTx stores the pending transaction under its id.
func (b *Badger) SavePendingTx(tx database.Tx) error {
	return b.store.Upsert(tx.ID, tx)
}

// DeletePendingTx removes the pending transaction.
func (b *Badger) DeletePendingTx(id string) error {
	err := b.store.Delete(id, database.Tx{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}

	return err
}

// LoadPendingTxs returns every pending transaction ordered by id.
func (b *Badger) LoadPendingTxs() ([]database.Tx, error) {
	var txs []database.Tx
	if err := b.store.Find(&txs, badgerhold.Where("ID").Ne("").SortBy("ID")); err != nil {
		return nil, err
	}

	return txs, nil
}

// =============================================================================

// badgerIterator represents the iteration implementation for walking
// through the blocks in the store. This implements the database
// Iterator interface.
type badgerIterator struct {
	storage *Badger // Access to the storage API.
	current uint64  // Current block number being iterated over.
	eoc     bool    // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from the store.
func (bi *badgerIterator) Next() (database.BlockData, error) {
	if bi.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	bi.current++
	blockData, err := bi.storage.GetBlock(bi.current)
	if errors.Is(err, database.ErrNotFound) {
		bi.eoc = true
	}

	return blockData, err
}

// Done returns the end of chain value.
func (bi *badgerIterator) Done() bool {
	return bi.eoc
}
