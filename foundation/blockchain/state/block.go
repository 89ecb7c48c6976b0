package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
)

// AddBlock takes a block received from a peer, validates it and if that
// passes, adds the block to the local blockchain.
func (s *State) AddBlock(block database.Block) error {
	s.evHandler("state: AddBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.Header.PreviousHash, block.Hash(), len(block.Trans))
	defer s.evHandler("state: AddBlock: completed: newBlk[%s]", block.Hash())

	// Validate the block and then update the blockchain database.
	if err := s.validateUpdateDatabase(block); err != nil {
		return err
	}

	// If the runMiningOperation function is being executed it needs to stop
	// immediately. The G executing runMiningOperation will not return from the
	// function until done is called. That allows this function to complete
	// its state changes before a new mining operation takes place.
	done := s.Worker.SignalCancelMining()
	defer func() {
		s.evHandler("state: AddBlock: signal runMiningOperation to terminate")
		done()
	}()

	return nil
}

// ReplaceChain takes the full chain of a peer, starting with the genesis
// block, and makes it the local chain if it is longer and every block is
// valid. The local chain is kept on any failure.
func (s *State) ReplaceChain(blocks []database.Block) error {
	s.evHandler("state: ReplaceChain: started: blocks[%d]", len(blocks))
	defer s.evHandler("state: ReplaceChain: completed")

	if err := s.replaceChain(blocks); err != nil {
		return err
	}

	done := s.Worker.SignalCancelMining()
	defer func() {
		s.evHandler("state: ReplaceChain: signal runMiningOperation to terminate")
		done()
	}()

	return nil
}

// =============================================================================

// validateUpdateDatabase takes the block and validates the block against the
// consensus rules. If the block passes, then the state of the node is updated
// including adding the block to storage.
func (s *State) validateUpdateDatabase(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkHalted(); err != nil {
		return err
	}

	s.evHandler("state: validateUpdateDatabase: validate and append blk[%s]", block)

	if err := s.db.Append(block); err != nil {
		if errors.Is(err, database.ErrInvariant) {
			return s.halt(err)
		}
		return err
	}

	s.evHandler("state: validateUpdateDatabase: remove included and conflicting txs from mempool")

	s.revalidateMempool()

	// Send an event about this new block.
	s.blockEvent(block)

	return nil
}

// replaceChain validates and swaps the chain under the lock.
func (s *State) replaceChain(blocks []database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkHalted(); err != nil {
		return err
	}

	if err := s.db.Replace(blocks); err != nil {
		if errors.Is(err, database.ErrInvariant) {
			return s.halt(err)
		}
		return err
	}

	s.evHandler("state: replaceChain: latest blk[%s]", s.db.LatestBlock())

	s.revalidateMempool()

	s.blockEvent(s.db.LatestBlock())

	return nil
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockHeaderJSON, err := json.Marshal(block.Header)
	if err != nil {
		blockHeaderJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	blockTransJSON, err := json.Marshal(block.Trans)
	if err != nil {
		blockTransJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":%q,"header":%s,"trans":%s}`, block.Hash(), string(blockHeaderJSON), string(blockTransJSON))
}
