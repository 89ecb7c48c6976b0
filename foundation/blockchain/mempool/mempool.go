// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/mempool/selector"
)

// Mempool represents a cache of pending transactions organized by id with a
// second index on the outpoints they spend. No two pending transactions may
// spend the same outpoint.
type Mempool struct {
	pool     map[string]selector.Pending
	claimed  map[database.Outpoint]string
	arrival  uint64
	mu       sync.RWMutex
	selectFn selector.Func
}

// New constructs a new mempool using the default select strategy.
func New() (*Mempool, error) {
	return NewWithStrategy(selector.StrategyFee)
}

// NewWithStrategy constructs a new mempool with specified select strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[string]selector.Pending),
		claimed:  make(map[database.Outpoint]string),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds a transaction to the mempool with the fee it leaves. A
// transaction already in the pool or spending an outpoint another pending
// transaction spends is rejected.
func (mp *Mempool) Upsert(tx database.Tx, fee uint64) (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.pool[tx.ID]; exists {
		return 0, &database.RuleError{Kind: database.KindReplay, Err: fmt.Errorf("tx[%s] is already pending", tx.ID)}
	}

	for _, in := range tx.Inputs {
		if id, exists := mp.claimed[in.Outpoint]; exists {
			return 0, &database.RuleError{Kind: database.KindDoubleSpend, Err: fmt.Errorf("tx[%s]: %s is already spent by pending tx[%s]", tx.ID, in.Outpoint, id)}
		}
	}

	mp.arrival++
	mp.pool[tx.ID] = selector.Pending{
		Tx:      tx,
		Fee:     fee,
		Arrival: mp.arrival,
	}

	for _, in := range tx.Inputs {
		mp.claimed[in.Outpoint] = tx.ID
	}

	return len(mp.pool), nil
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.delete(id)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]selector.Pending)
	mp.claimed = make(map[database.Outpoint]string)
}

// Claimed reports if a pending transaction spends the outpoint.
func (mp *Mempool) Claimed(op database.Outpoint) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, exists := mp.claimed[op]
	return exists
}

// Exists reports if the transaction is pending.
func (mp *Mempool) Exists(id string) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, exists := mp.pool[id]
	return exists
}

// Copy returns the pending transactions in the order they arrived.
func (mp *Mempool) Copy() []database.Tx {
	fifo, _ := selector.Retrieve(selector.StrategyFIFO)

	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return fifo(mp.values(), -1)
}

// PickBest uses the configured select strategy to return the next set
// of transactions for the next block. Pass -1 for all of them.
func (mp *Mempool) PickBest(howMany int) []database.Tx {
	mp.mu.RLock()
	pending := mp.values()
	mp.mu.RUnlock()

	return mp.selectFn(pending, howMany)
}

// Fees returns the total fee left by the transactions.
func (mp *Mempool) Fees(trans []database.Tx) uint64 {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	var fees uint64
	for _, tx := range trans {
		fees += mp.pool[tx.ID].Fee
	}

	return fees
}

// =============================================================================

// values returns the pending transactions. The caller must hold the lock.
func (mp *Mempool) values() []selector.Pending {
	pending := make([]selector.Pending, 0, len(mp.pool))
	for _, p := range mp.pool {
		pending = append(pending, p)
	}

	return pending
}

// delete removes the transaction. The caller must hold the lock.
func (mp *Mempool) delete(id string) {
	p, exists := mp.pool[id]
	if !exists {
		return
	}

	for _, in := range p.Tx.Inputs {
		if mp.claimed[in.Outpoint] == id {
			delete(mp.claimed, in.Outpoint)
		}
	}

	delete(mp.pool, id)
}
