package database

import (
	"fmt"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/hasher"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/merkle"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// BlockHeader represents common information required for each block. The
// block hash is the canonical hash of the header, and the header commits to
// the transactions through the trans root.
type BlockHeader struct {
	Index        uint64 `json:"index"`         // Position in the chain, genesis is zero.
	PreviousHash string `json:"previous_hash"` // Hash of the previous block, empty for genesis.
	Timestamp    uint64 `json:"timestamp"`     // Seconds since epoch when the block was mined.
	Nonce        uint64 `json:"nonce"`         // Value identified to solve the proof of work.
	TransRoot    string `json:"trans_root"`    // Order sensitive hash of the transaction ids.
}

// Block represents a group of transactions batched together. A Block is
// immutable once constructed, mining works on its own copy of a header.
type Block struct {
	Header BlockHeader
	Trans  []Tx
	hash   string
}

// NewBlock constructs a block and computes its hash.
func NewBlock(h *hasher.Hasher, header BlockHeader, trans []Tx) Block {
	return Block{
		Header: header,
		Trans:  trans,
		hash:   h.ComputeHash(header),
	}
}

// GenesisBlock constructs the trusted root block from the genesis file.
func GenesisBlock(h *hasher.Hasher, gen genesis.Genesis) Block {
	header := BlockHeader{
		Index:        0,
		PreviousHash: "",
		Timestamp:    gen.GenesisBlock.Timestamp,
		Nonce:        gen.GenesisBlock.Nonce,
		TransRoot:    TransRoot(h, nil),
	}

	return NewBlock(h, header, []Tx{})
}

// Hash returns the hash the block was constructed or received with.
func (b Block) Hash() string {
	return b.hash
}

// Reward returns the reward transaction of the block.
func (b Block) Reward() (Tx, bool) {
	if len(b.Trans) == 0 || b.Trans[0].Type != TxReward {
		return Tx{}, false
	}

	return b.Trans[0], true
}

// Proof returns the merkle inclusion proof of the transaction against the
// trans root of the block.
func (b Block) Proof(h *hasher.Hasher, txID string) ([]string, []int64, error) {
	tree, err := merkle.NewTree(b.Trans, merkle.WithHashStrategy[Tx](h.Strategy()))
	if err != nil {
		return nil, nil, err
	}

	proof, order, err := tree.Proof(Tx{ID: txID})
	if err != nil {
		return nil, nil, err
	}

	hexProof := make([]string, len(proof))
	for i, p := range proof {
		hexProof[i] = hexutil.Encode(p)
	}

	return hexProof, order, nil
}

// ValidateBlock checks the block against its parent and the target for its
// height. These checks need no ledger state, the transactions are checked
// against the unspent outputs by the database.
func (b Block) ValidateBlock(h *hasher.Hasher, previousBlock Block, target uint64, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: block is the next index", b.Header.Index)

	nextIndex := previousBlock.Header.Index + 1
	if b.Header.Index != nextIndex {
		return newRuleError(KindValidation, "this block is not the next index, got %d, exp %d", b.Header.Index, nextIndex)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: previous hash does match parent block", b.Header.Index)

	if b.Header.PreviousHash != previousBlock.Hash() {
		return newRuleError(KindValidation, "previous block hash doesn't match our known parent, got %s, exp %s", b.Header.PreviousHash, previousBlock.Hash())
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block's timestamp is not before parent block's timestamp", b.Header.Index)

	if b.Header.Timestamp < previousBlock.Header.Timestamp {
		return newRuleError(KindValidation, "block timestamp is before parent block, parent %d, block %d", previousBlock.Header.Timestamp, b.Header.Timestamp)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash matches header", b.Header.Index)

	hash := h.ComputeHash(b.Header)
	if hash != b.hash {
		return newRuleError(KindValidation, "block hash doesn't match header, got %s, exp %s", b.hash, hash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash has been solved", b.Header.Index)

	if !IsHashSolved(target, hash) {
		return newRuleError(KindValidation, "%s doesn't meet target %d at height %d", hash, target, b.Header.Index)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: trans root does match transactions", b.Header.Index)

	if root := TransRoot(h, b.Trans); b.Header.TransRoot != root {
		return newRuleError(KindValidation, "trans root does not match transactions, got %s, exp %s", b.Header.TransRoot, root)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block has a single reward in first position", b.Header.Index)

	if _, exists := b.Reward(); !exists {
		return newRuleError(KindStructural, "block %d has no reward transaction", b.Header.Index)
	}

	for i, tx := range b.Trans[1:] {
		if tx.Type != TxRegular {
			return newRuleError(KindStructural, "block %d: transaction %d has type %q", b.Header.Index, i+1, tx.Type)
		}
	}

	return nil
}

// TransRoot returns the order sensitive hash of the transaction ids.
func TransRoot(h *hasher.Hasher, trans []Tx) string {
	digests := make([][]byte, len(trans))
	for i, tx := range trans {
		digests[i] = common.FromHex(tx.ID)
	}

	return hexutil.Encode(h.ComputeSequenceHash(digests))
}

// =============================================================================

// BlockData represents what is written to storage and sent over the network.
type BlockData struct {
	Hash   string      `json:"hash"`
	Header BlockHeader `json:"block"`
	Trans  []Tx        `json:"trans"`
}

// NewBlockData constructs the value to serialize.
func NewBlockData(block Block) BlockData {
	return BlockData{
		Hash:   block.Hash(),
		Header: block.Header,
		Trans:  block.Trans,
	}
}

// ToBlock converts block data into a block. The hash is kept as received so
// validation can compare it with the header.
func ToBlock(blockData BlockData) Block {
	return Block{
		Header: blockData.Header,
		Trans:  blockData.Trans,
		hash:   blockData.Hash,
	}
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("%d:%s", b.Header.Index, b.hash)
}
