package state

import (
	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/peer"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = database.QueryLatest

// =============================================================================

// Host returns a copy of host information.
func (s *State) Host() string {
	return s.host
}

// Beneficiary returns the address mining rewards are paid to.
func (s *State) Beneficiary() string {
	return s.beneficiary
}

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// GenesisBlock returns the genesis block.
func (s *State) GenesisBlock() database.Block {
	return s.db.Genesis()
}

// LatestBlock returns a copy the current latest block.
func (s *State) LatestBlock() database.Block {
	return s.db.LatestBlock()
}

// Halted returns the reason the ledger halted, nil while it is healthy.
func (s *State) Halted() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.halted
}

// Mempool returns a copy of the mempool in arrival order.
func (s *State) Mempool() []database.Tx {
	return s.mempool.Copy()
}

// MempoolLength returns the current length of the mempool.
func (s *State) MempoolLength() int {
	return s.mempool.Count()
}

// UnspentForAddress returns the unspent outputs owned by the address.
func (s *State) UnspentForAddress(address string) []database.UnspentOutput {
	return s.db.UnspentForAddress(address)
}

// UnclaimedForAddress returns the unspent outputs owned by the address that
// no pending transaction spends yet. These are the outputs a wallet can
// spend.
func (s *State) UnclaimedForAddress(address string) []database.UnspentOutput {
	unspent := s.db.UnspentForAddress(address)

	var list []database.UnspentOutput
	for _, u := range unspent {
		if !s.mempool.Claimed(u.Outpoint()) {
			list = append(list, u)
		}
	}

	return list
}

// Balance returns the sum of the unspent outputs owned by the address.
func (s *State) Balance(address string) uint64 {
	return s.db.Balance(address)
}

// Supply returns the total amount of unspent outputs.
func (s *State) Supply() uint64 {
	return s.db.Supply()
}

// Blocks returns the set of blocks based on block numbers. Block zero is the
// genesis block. Pass QueryLatest to mean the latest block.
func (s *State) Blocks(from uint64, to uint64) ([]database.Block, error) {
	return s.db.Blocks(from, to)
}

// Block returns the block by number.
func (s *State) Block(num uint64) (database.Block, error) {
	return s.db.GetBlock(num)
}

// TxProof returns the block holding the transaction and the merkle proof of
// its inclusion in the trans root of that block.
func (s *State) TxProof(id string) (database.Block, []string, []int64, error) {
	block, err := s.db.TxBlock(id)
	if err != nil {
		return database.Block{}, nil, nil, err
	}

	proof, order, err := block.Proof(s.hasher, id)
	if err != nil {
		return database.Block{}, nil, nil, err
	}

	return block, proof, order, nil
}

// =============================================================================

// KnownPeers retrieves a copy of the known peer list.
func (s *State) KnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// AddKnownPeer provides the ability to add a new peer.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	if pr.Match(s.host) {
		return false
	}

	return s.knownPeers.Add(pr)
}

// RemoveKnownPeer removes a peer from the known peer list.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}

// Status returns the status this node reports to its peers.
func (s *State) Status() peer.PeerStatus {
	latest := s.db.LatestBlock()

	return peer.PeerStatus{
		LatestBlockHash:  latest.Hash(),
		LatestBlockIndex: latest.Header.Index,
		MempoolCount:     s.mempool.Count(),
		KnownPeers:       s.KnownPeers(),
	}
}
