package database

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"math"
	"math/big"
	"time"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/hasher"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// The difficulty of a hash is the big endian number held in this slice of
// the raw digest. Lower numbers are harder to find, a hash solves target T
// when its difficulty is below T.
const (
	DifficultyOffset = 0
	DifficultyWidth  = 7
)

// Difficulty returns the numeric value of the hash used to check the proof
// of work. A hash that can't be decoded has the maximum value.
func Difficulty(hash string) uint64 {
	b, err := hexutil.Decode(hash)
	if err != nil || len(b) < DifficultyOffset+DifficultyWidth {
		return math.MaxUint64
	}

	var buf [8]byte
	copy(buf[8-DifficultyWidth:], b[DifficultyOffset:DifficultyOffset+DifficultyWidth])

	return binary.BigEndian.Uint64(buf[:])
}

// IsHashSolved checks the hash meets the target.
func IsHashSolved(target uint64, hash string) bool {
	return Difficulty(hash) < target
}

// Target returns the target a block at index must meet. The history holds the
// headers of the chain before index, in order from genesis.
//
// The base curve is BaseDifficulty / (floor((index+1)/EveryXBlocks)+1)^PowCurve.
// When TargetBlockTime is set, the curve value is scaled by how long the
// blocks before the retarget boundary took compared to the expected time,
// clamped to a factor of four either way.
func Target(pow genesis.ProofOfWork, index uint64, history []BlockHeader) uint64 {
	every := max(pow.EveryXBlocks, 1)
	step := (index + 1) / every

	target := float64(pow.BaseDifficulty) / math.Pow(float64(step+1), pow.PowCurve)

	// The window is the blocks before the first block of this step so every
	// block of a step shares the same target.
	if boundary := step*every - 1; pow.TargetBlockTime > 0 && step > 0 && boundary > 1 {
		end := boundary - 1
		start := uint64(0)
		if end > every {
			start = end - every
		}

		if end < uint64(len(history)) {
			actual := float64(history[end].Timestamp) - float64(history[start].Timestamp)
			expected := float64((end - start) * pow.TargetBlockTime)

			ratio := min(max(actual/expected, 0.25), 4)
			target *= ratio
		}
	}

	switch {
	case target < 1:
		return 1
	case target > float64(pow.BaseDifficulty):
		return pow.BaseDifficulty
	}

	return uint64(target)
}

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	Hasher    *hasher.Hasher
	PrevBlock Block
	Target    uint64
	Trans     []Tx
	EvHandler func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle. The header being mined is local to
// this call, nothing else sees the block until it is solved.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	ev("database: POW: MINING: started")
	defer ev("database: POW: MINING: completed")

	for _, tx := range args.Trans {
		ev("database: POW: MINING: tx[%s]", tx)
	}

	header := BlockHeader{
		Index:        args.PrevBlock.Header.Index + 1,
		PreviousHash: args.PrevBlock.Hash(),
		Timestamp:    blockTime(args.PrevBlock),
		TransRoot:    TransRoot(args.Hasher, args.Trans),
	}

	// Choose a random starting point for the nonce. After this, the nonce
	// will be incremented by 1 until a solution is found by us or another node.
	nBig, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return Block{}, err
	}
	header.Nonce = nBig.Uint64()

	// Loop until we or another node finds a solution for the next block.
	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: POW: MINING: attempts[%d]", attempts)
			header.Timestamp = blockTime(args.PrevBlock)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: POW: MINING: CANCELLED")
			return Block{}, ctx.Err()
		}

		// Hash the header and check if we have solved the puzzle.
		hash := args.Hasher.ComputeHash(header)
		if !IsHashSolved(args.Target, hash) {
			header.Nonce++
			continue
		}

		ev("database: POW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", header.PreviousHash, hash)
		ev("database: POW: MINING: attempts[%d]", attempts)

		block := Block{
			Header: header,
			Trans:  args.Trans,
			hash:   hash,
		}

		return block, nil
	}
}

// blockTime returns the current time, never before the parent block.
func blockTime(prevBlock Block) uint64 {
	return max(uint64(time.Now().UTC().Unix()), prevBlock.Header.Timestamp)
}
