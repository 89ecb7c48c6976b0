// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, and turned into generics.

// Package merkle provides an implementation of a merkle tree. The root of the
// tree is the order sensitive digest of a sequence of values and the tree can
// produce inclusion proofs for any value in the sequence.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"hash"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Proof orders describe on which side a proof hash is concatenated.
const (
	ProofLeft  int64 = 0
	ProofRight int64 = 1
)

// Leaf and interior nodes are hashed with different prefixes so a sequence
// can never produce the root of a different sequence.
const (
	leafPrefix     byte = 0x00
	interiorPrefix byte = 0x01
)

// ErrNotFound is returned when the value is not a leaf of the tree.
var ErrNotFound = errors.New("unable to find data in tree")

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable[T any] interface {
	Hash() ([]byte, error)
	Equals(other T) bool
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable[T]] struct {
	Root         *Node[T]
	Leafs        []*Node[T]
	MerkleRoot   []byte
	hashStrategy func() hash.Hash
}

// WithHashStrategy is used to change the default hash strategy of using sha256
// when constructing a new tree.
func WithHashStrategy[T Hashable[T]](hashStrategy func() hash.Hash) func(t *Tree[T]) {
	return func(t *Tree[T]) {
		t.hashStrategy = hashStrategy
	}
}

// NewTree constructs a new merkle tree that uses data of some type T that
// exhibits the behavior defined by the Hashable interface.
func NewTree[T Hashable[T]](values []T, options ...func(t *Tree[T])) (*Tree[T], error) {
	t := Tree[T]{
		hashStrategy: sha256.New,
	}

	for _, option := range options {
		option(&t)
	}

	if err := t.Generate(values); err != nil {
		return nil, err
	}

	return &t, nil
}

// Generate constructs the leafs and nodes of the tree from the specified
// data. If the tree has been generated previously, the tree is re-generated
// from scratch.
func (t *Tree[T]) Generate(values []T) error {
	if len(values) == 0 {
		return errors.New("cannot construct tree with no content")
	}

	var leafs []*Node[T]
	for _, value := range values {
		hash, err := value.Hash()
		if err != nil {
			return err
		}

		leafs = append(leafs, &Node[T]{
			Hash:  t.hashPrefixed(leafPrefix, hash),
			Value: value,
			leaf:  true,
			Tree:  t,
		})
	}

	t.Root = buildIntermediate(leafs, t)
	t.Leafs = leafs
	t.MerkleRoot = t.Root.Hash

	return nil
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving a value is in the tree. Order ProofLeft says the proof
// hash comes first, ProofRight says it comes second.
func (t *Tree[T]) Proof(data T) ([][]byte, []int64, error) {
	for _, node := range t.Leafs {
		if !node.Value.Equals(data) {
			continue
		}

		var merkleProof [][]byte
		var order []int64
		nodeParent := node.Parent

		for nodeParent != nil {
			if nodeParent.Left == node {
				merkleProof = append(merkleProof, nodeParent.Right.Hash)
				order = append(order, ProofRight)
			} else {
				merkleProof = append(merkleProof, nodeParent.Left.Hash)
				order = append(order, ProofLeft)
			}
			node = nodeParent
			nodeParent = nodeParent.Parent
		}

		return merkleProof, order, nil
	}

	return nil, nil, ErrNotFound
}

// Verify validates the hashes at each level of the tree and returns nil
// if the resulting hash at the root of the tree matches the root hash.
func (t *Tree[T]) Verify() error {
	calculatedMerkleRoot, err := t.Root.verify()
	if err != nil {
		return err
	}

	if !bytes.Equal(t.MerkleRoot, calculatedMerkleRoot) {
		return errors.New("root hash invalid")
	}

	return nil
}

// Values returns a slice of the values stored in the tree.
func (t *Tree[T]) Values() []T {
	values := make([]T, len(t.Leafs))
	for i, node := range t.Leafs {
		values[i] = node.Value
	}

	return values
}

// RootHex converts the merkle root byte hash to a hex encoded string.
func (t *Tree[T]) RootHex() string {
	return hexutil.Encode(t.MerkleRoot)
}

// MarshalText implements the TextMarshaler interface and produces a panic
// if anyone tries to marshal the Merkle tree. Use the Values function to
// return a slice that can be marshaled.
func (t *Tree[T]) MarshalText() (text []byte, err error) {
	panic("do not marshal the merkle tree, use Values")
}

// =============================================================================

// VerifyProof recomputes the root from the hash of a value and the proof
// returned by Proof. This is what a client holding only the root uses to
// check inclusion.
func VerifyProof(root []byte, valueHash []byte, proof [][]byte, order []int64, hashStrategy func() hash.Hash) bool {
	if len(proof) != len(order) {
		return false
	}

	h := hashStrategy()
	h.Write([]byte{leafPrefix})
	h.Write(valueHash)
	current := h.Sum(nil)

	for i, p := range proof {
		h := hashStrategy()
		h.Write([]byte{interiorPrefix})
		switch order[i] {
		case ProofLeft:
			h.Write(p)
			h.Write(current)
		case ProofRight:
			h.Write(current)
			h.Write(p)
		default:
			return false
		}
		current = h.Sum(nil)
	}

	return bytes.Equal(root, current)
}

// =============================================================================

// Node represents a node, root, or leaf in the tree. It stores pointers to its
// immediate relationships, a hash, the data if it is a leaf, and other metadata.
type Node[T Hashable[T]] struct {
	Tree   *Tree[T]
	Parent *Node[T]
	Left   *Node[T]
	Right  *Node[T]
	Hash   []byte
	Value  T
	leaf   bool
}

// verify walks down the tree until hitting a leaf, calculating the hash at
// each level and returning the resulting hash of the node.
func (n *Node[T]) verify() ([]byte, error) {
	if n.leaf {
		hash, err := n.Value.Hash()
		if err != nil {
			return nil, err
		}
		return n.Tree.hashPrefixed(leafPrefix, hash), nil
	}

	rightBytes, err := n.Right.verify()
	if err != nil {
		return nil, err
	}

	leftBytes, err := n.Left.verify()
	if err != nil {
		return nil, err
	}

	return n.Tree.hashPrefixed(interiorPrefix, leftBytes, rightBytes), nil
}

// hashPrefixed hashes the prefix byte followed by the parts.
func (t *Tree[T]) hashPrefixed(prefix byte, parts ...[]byte) []byte {
	h := t.hashStrategy()
	h.Write([]byte{prefix})
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// =============================================================================

// buildIntermediate is a helper function that for a given list of nodes,
// constructs the intermediate and root levels of the tree. A node left
// without a sibling moves up a level unchanged. Returns the resulting root
// node of the tree.
func buildIntermediate[T Hashable[T]](nl []*Node[T], t *Tree[T]) *Node[T] {
	if len(nl) == 1 {
		return nl[0]
	}

	var nodes []*Node[T]
	for i := 0; i < len(nl); i += 2 {
		if i+1 == len(nl) {
			nodes = append(nodes, nl[i])
			break
		}

		n := Node[T]{
			Left:  nl[i],
			Right: nl[i+1],
			Hash:  t.hashPrefixed(interiorPrefix, nl[i].Hash, nl[i+1].Hash),
			Tree:  t,
		}

		nodes = append(nodes, &n)
		nl[i].Parent = &n
		nl[i+1].Parent = &n
	}

	return buildIntermediate(nodes, t)
}
