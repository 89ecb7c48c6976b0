// Package hasher provides the canonical content hashing used for block and
// transaction integrity. Two values that are structurally equal produce the
// same digest no matter the order their fields were constructed or serialized.
package hasher

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"hash"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/merkle"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Default is a hasher using the sha256 strategy for callers that have no need
// to substitute the digest.
var Default = New()

// =============================================================================

// Hasher computes canonical digests of values. Construct one with New and pass
// it to the packages that need it.
type Hasher struct {
	strategy func() hash.Hash
}

// WithStrategy is used to change the default digest of sha256 when
// constructing a new hasher.
func WithStrategy(strategy func() hash.Hash) func(h *Hasher) {
	return func(h *Hasher) {
		h.strategy = strategy
	}
}

// New constructs a hasher that uses sha256 unless another strategy is provided.
func New(options ...func(h *Hasher)) *Hasher {
	h := Hasher{
		strategy: sha256.New,
	}

	for _, option := range options {
		option(&h)
	}

	return &h
}

// ComputeHash returns the hex encoded canonical digest of the value.
func (h *Hasher) ComputeHash(value any) string {
	return hexutil.Encode(h.ComputeHashBytes(value))
}

// ComputeHashBytes returns the canonical digest of the value. Strings and
// byte slices are hashed as raw bytes. Any other value is put in canonical
// form first. A value that can't be represented, such as a channel or a
// cyclic structure, is a programming error and causes a panic.
func (h *Hasher) ComputeHashBytes(value any) []byte {
	var data []byte

	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		var err error
		if data, err = Canonical(value); err != nil {
			panic(fmt.Sprintf("hasher: value can't be hashed: %s", err))
		}
	}

	return h.digest(data)
}

// ComputeSequenceHash combines the specified digests into a single digest
// where the order of the digests matters. An empty sequence hashes to the
// digest of an empty canonical list.
func (h *Hasher) ComputeSequenceHash(digests [][]byte) []byte {
	if len(digests) == 0 {
		return h.ComputeHashBytes([]any{})
	}

	leafs := make([]Digest, len(digests))
	for i, d := range digests {
		leafs[i] = Digest(d)
	}

	tree, err := merkle.NewTree(leafs, merkle.WithHashStrategy[Digest](h.strategy))
	if err != nil {
		panic(fmt.Sprintf("hasher: sequence can't be hashed: %s", err))
	}

	return tree.MerkleRoot
}

// Strategy returns the digest constructor in use.
func (h *Hasher) Strategy() func() hash.Hash {
	return h.strategy
}

// digest applies the hash strategy to the data.
func (h *Hasher) digest(data []byte) []byte {
	hh := h.strategy()
	hh.Write(data)
	return hh.Sum(nil)
}

// =============================================================================

// Canonical returns the canonical encoding of the value. The value is encoded
// as JSON and decoded into a generic tree which is encoded again. Objects are
// written with their keys sorted by name and numbers keep their literal form.
func Canonical(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()

	var generic any
	if err := d.Decode(&generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}

// =============================================================================

// Digest is an already computed hash that can be used as a merkle tree leaf.
type Digest []byte

// Hash implements the merkle Hashable interface.
func (d Digest) Hash() ([]byte, error) {
	return d, nil
}

// Equals implements the merkle Hashable interface.
func (d Digest) Equals(other Digest) bool {
	return bytes.Equal(d, other)
}
