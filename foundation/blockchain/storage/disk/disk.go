// Package disk implements the ability to read and write blocks to disk
// writing each block to a separate file.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
)

// Disk represents the serialization implementation for reading and storing
// blocks in their own separate files on disk. Pending transactions are kept
// one file per transaction in the pending directory. This implements the
// database.Storage and database.PendingStore interfaces.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use. What a crash in the middle of a
// write left behind is cleaned up first.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(path.Join(dbPath, "pending"), 0755); err != nil {
		return nil, err
	}

	d := Disk{dbPath: dbPath}
	if err := d.repair(); err != nil {
		return nil, fmt.Errorf("recovering %s: %w", dbPath, err)
	}

	return &d, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new block and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified block and stores it on disk in a
// file labeled with the block number.
func (d *Disk) Write(blockData database.BlockData) error {

	// Marshal the block for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(blockData, "", "  ")
	if err != nil {
		return err
	}

	return writeFile(d.getPath(blockData.Header.Index), data)
}

// GetBlock searches the blockchain on disk to locate and return the
// contents of the specified block by number.
func (d *Disk) GetBlock(num uint64) (database.BlockData, error) {

	// Open the block file for the specified number.
	f, err := os.Open(d.getPath(num))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return database.BlockData{}, fmt.Errorf("block %d: %w", num, database.ErrNotFound)
		}
		return database.BlockData{}, err
	}
	defer f.Close()

	// Decode the contents of the block.
	var blockData database.BlockData
	if err := json.NewDecoder(f).Decode(&blockData); err != nil {
		return database.BlockData{}, err
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 1.
func (d *Disk) ForEach() database.Iterator {
	return &diskIterator{disk: d}
}

// Reset will clear out the blockchain on disk. Pending transactions are
// kept.
func (d *Disk) Reset() error {
	entries, err := os.ReadDir(d.dbPath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		if err := os.Remove(path.Join(d.dbPath, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// =============================================================================

// SavePendingTx writes the pending transaction to its own file.
func (d *Disk) SavePendingTx(tx database.Tx) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}

	return writeFile(d.getPendingPath(tx.ID), data)
}

// DeletePendingTx removes the file of the pending transaction.
func (d *Disk) DeletePendingTx(id string) error {
	err := os.Remove(d.getPendingPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// LoadPendingTxs reads every pending transaction ordered by id.
func (d *Disk) LoadPendingTxs() ([]database.Tx, error) {
	dir := path.Join(d.dbPath, "pending")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var txs []database.Tx
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		var tx database.Tx
		if err := json.Unmarshal(data, &tx); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", entry.Name(), err)
		}
		txs = append(txs, tx)
	}

	sort.Slice(txs, func(i, j int) bool {
		return txs[i].ID < txs[j].ID
	})

	return txs, nil
}

// =============================================================================

// getPath forms the path to the specified block.
func (d *Disk) getPath(blockNum uint64) string {
	name := strconv.FormatUint(blockNum, 10)
	return path.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// getPendingPath forms the path to the specified pending transaction.
func (d *Disk) getPendingPath(id string) string {
	return path.Join(d.dbPath, "pending", fmt.Sprintf("%s.json", path.Base(id)))
}

// repair removes the temporary files of unfinished writes and a last block
// that doesn't decode. Blocks are written one at a time in order so only the
// last one can be incomplete.
func (d *Disk) repair() error {
	for _, dir := range []string{d.dbPath, path.Join(d.dbPath, "pending")} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tmp") {
				continue
			}

			if err := os.Remove(path.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}

	last, err := d.lastBlock()
	if err != nil || last == 0 {
		return err
	}

	data, err := os.ReadFile(d.getPath(last))
	if err != nil {
		return err
	}

	var blockData database.BlockData
	if err := json.Unmarshal(data, &blockData); err != nil {
		return os.Remove(d.getPath(last))
	}

	return nil
}

// lastBlock returns the highest block number with a file on disk.
func (d *Disk) lastBlock() (uint64, error) {
	entries, err := os.ReadDir(d.dbPath)
	if err != nil {
		return 0, err
	}

	var last uint64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		num, err := strconv.ParseUint(strings.TrimSuffix(entry.Name(), ".json"), 10, 64)
		if err != nil {
			continue
		}
		last = max(last, num)
	}

	return last, nil
}

// writeFile replaces the file with the data. The data goes to a temporary
// file in the same directory that is synced and then renamed over the file,
// so a reader or a restart sees the old file or the new one.
func writeFile(name string, data []byte) error {
	f, err := os.CreateTemp(path.Dir(name), path.Base(name)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, name); err != nil {
		os.Remove(tmp)
		return err
	}

	return nil
}

// =============================================================================

// diskIterator represents the iteration implementation for walking
// through and reading blocks on disk. This implements the database
// Iterator interface.
type diskIterator struct {
	disk    *Disk  // Access to the storage API.
	current uint64 // Current block number being iterated over.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from disk.
func (di *diskIterator) Next() (database.BlockData, error) {
	if di.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	di.current++
	blockData, err := di.disk.GetBlock(di.current)
	if errors.Is(err, database.ErrNotFound) {
		di.eoc = true
	}

	return blockData, err
}

// Done returns the end of chain value.
func (di *diskIterator) Done() bool {
	return di.eoc
}
