package state

import (
	"fmt"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
)

// AddTransaction accepts a transaction from a wallet for inclusion. It is
// checked against the unspent outputs not already claimed by a pending
// transaction before it goes to the mempool and gets shared with the peers.
func (s *State) AddTransaction(tx database.Tx) error {
	if err := s.addTransaction(tx); err != nil {
		return err
	}

	s.Worker.SignalShareTx(tx)
	s.restartMining()

	return nil
}

// AddPeerTransaction accepts a transaction shared by a peer for inclusion.
// The peer already shared it so it is not shared again.
func (s *State) AddPeerTransaction(tx database.Tx) error {
	if err := s.addTransaction(tx); err != nil {
		return err
	}

	s.restartMining()

	return nil
}

// restartMining stops the candidate being mined, it was built from the
// mempool before this transaction arrived, and signals a new candidate.
func (s *State) restartMining() {
	done := s.Worker.SignalCancelMining()
	done()

	s.Worker.SignalStartMining()
}

// =============================================================================

func (s *State) addTransaction(tx database.Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkHalted(); err != nil {
		return err
	}

	if err := s.upsertMempool(tx); err != nil {
		return err
	}

	if s.pending != nil {
		if err := s.pending.SavePendingTx(tx); err != nil {
			s.evHandler("state: addTransaction: WARNING: saving tx[%s]: %s", tx, err)
		}
	}

	s.evHandler("state: addTransaction: tx[%s]: accepted", tx)

	return nil
}

// upsertMempool validates the transaction and adds it to the mempool. The
// caller must hold the lock.
func (s *State) upsertMempool(tx database.Tx) error {
	if s.mempool.Exists(tx.ID) {
		return &database.RuleError{Kind: database.KindReplay, Err: fmt.Errorf("tx[%s] is already pending", tx.ID)}
	}

	fee, err := s.db.CheckTransaction(tx, s.mempool.Claimed)
	if err != nil {
		return err
	}

	if _, err := s.mempool.Upsert(tx, fee); err != nil {
		return err
	}

	return nil
}

// revalidateMempool drops the pending transactions the chain made invalid,
// the ones it includes and the ones spending outputs it spent. The caller
// must hold the lock.
func (s *State) revalidateMempool() {
	for _, tx := range s.mempool.Copy() {
		if _, err := s.db.CheckTransaction(tx, nil); err != nil {
			s.evHandler("state: revalidateMempool: tx[%s]: removed: %s", tx, err)

			s.mempool.Delete(tx.ID)
			if s.pending != nil {
				if err := s.pending.DeletePendingTx(tx.ID); err != nil {
					s.evHandler("state: revalidateMempool: WARNING: deleting tx[%s]: %s", tx, err)
				}
			}
		}
	}
}
