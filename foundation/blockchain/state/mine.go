package state

import (
	"context"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
)

// MineNewBlock attempts to create a new block with a proper hash that can become
// the next block in the chain. The block pays the mining reward plus the fees
// of the pending transactions it picks to the beneficiary. A block with no
// pending transactions only mints the reward.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: pick transactions")

	// Pick the best transactions from the mempool.
	trans := s.mempool.PickBest(int(s.genesis.Mining.TransPerBlock))
	fees := s.mempool.Fees(trans)

	prevBlock := s.db.LatestBlock()
	reward := database.NewRewardTx(s.hasher, prevBlock.Header.Index+1, s.beneficiary, s.genesis.Mining.MiningReward+fees)

	s.evHandler("state: MineNewBlock: MINING: perform POW: trans[%d]: fees[%d]", len(trans), fees)

	// Attempt to create a new block by solving the POW puzzle. This can be cancelled.
	block, err := database.POW(ctx, database.POWArgs{
		Hasher:    s.hasher,
		PrevBlock: prevBlock,
		Target:    s.db.NextTarget(),
		Trans:     append([]database.Tx{reward}, trans...),
		EvHandler: s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: validate and update database")

	// Validate the block and then update the blockchain database.
	if err := s.validateUpdateDatabase(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}
