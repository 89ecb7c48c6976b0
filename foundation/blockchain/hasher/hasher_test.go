package hasher_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"testing"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/hasher"
	"golang.org/x/crypto/sha3"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type ordered struct {
	Index    uint64 `json:"index"`
	Previous string `json:"previous_hash"`
	Nonce    uint64 `json:"nonce"`
}

type reordered struct {
	Nonce    uint64 `json:"nonce"`
	Index    uint64 `json:"index"`
	Previous string `json:"previous_hash"`
}

// =============================================================================

func Test_PropertyOrder(t *testing.T) {
	h := hasher.New()

	t.Log("Given the need to hash values independent of property order.")
	{
		a := h.ComputeHash(ordered{Index: 1, Previous: "0xabc", Nonce: 42})
		b := h.ComputeHash(reordered{Nonce: 42, Index: 1, Previous: "0xabc"})
		if a != b {
			t.Logf("\t%s\tgot: %s", failed, a)
			t.Logf("\t%s\texp: %s", failed, b)
			t.Fatalf("\t%s\tShould get the same hash for reordered fields.", failed)
		}
		t.Logf("\t%s\tShould get the same hash for reordered fields.", success)

		var m map[string]any
		if err := json.Unmarshal([]byte(`{"nonce":42,"previous_hash":"0xabc","index":1}`), &m); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the document: %s", failed, err)
		}
		if c := h.ComputeHash(m); c != a {
			t.Logf("\t%s\tgot: %s", failed, c)
			t.Logf("\t%s\texp: %s", failed, a)
			t.Fatalf("\t%s\tShould get the same hash for a decoded document.", failed)
		}
		t.Logf("\t%s\tShould get the same hash for a decoded document.", success)

		d := h.ComputeHash(ordered{Index: 1, Previous: "0xabc", Nonce: 43})
		if d == a {
			t.Fatalf("\t%s\tShould get a different hash when a field changes.", failed)
		}
		t.Logf("\t%s\tShould get a different hash when a field changes.", success)
	}
}

func Test_Sequences(t *testing.T) {
	h := hasher.New()

	a := h.ComputeHash([]int{1, 2, 3})
	b := h.ComputeHash([]int{3, 2, 1})
	if a == b {
		t.Fatalf("Should get a different hash when a list is reordered.")
	}

	x := h.ComputeHashBytes("x")
	y := h.ComputeHashBytes("y")

	s1 := h.ComputeSequenceHash([][]byte{x, y})
	s2 := h.ComputeSequenceHash([][]byte{y, x})
	if bytes.Equal(s1, s2) {
		t.Fatalf("Should get a different sequence hash when digests are reordered.")
	}

	z := h.ComputeHashBytes("z")

	s3 := h.ComputeSequenceHash([][]byte{x, y, z})
	s4 := h.ComputeSequenceHash([][]byte{x, y, z, z})
	if bytes.Equal(s3, s4) {
		t.Fatalf("Should get a different sequence hash when the last digest is repeated.")
	}

	if s5 := h.ComputeSequenceHash([][]byte{s1}); bytes.Equal(s5, s1) {
		t.Fatalf("Should get a different sequence hash for a single digest holding a root.")
	}

	empty := h.ComputeSequenceHash(nil)
	if !bytes.Equal(empty, h.ComputeHashBytes([]any{})) {
		t.Fatalf("Should hash an empty sequence as an empty list.")
	}
}

func Test_RawString(t *testing.T) {
	h := hasher.New()

	exp := sha256.Sum256([]byte("naivecoin"))
	if got := h.ComputeHashBytes("naivecoin"); !bytes.Equal(got, exp[:]) {
		t.Logf("got: %x", got)
		t.Logf("exp: %x", exp)
		t.Fatalf("Should hash a raw string as its bytes.")
	}

	if got := h.ComputeHash("naivecoin"); len(got) != 66 {
		t.Fatalf("Should get a 0x prefixed 32 byte hex string, got %q", got)
	}
}

func Test_Strategy(t *testing.T) {
	sha := hasher.New()
	keccak := hasher.New(hasher.WithStrategy(sha3.NewLegacyKeccak256))

	if sha.ComputeHash("data") == keccak.ComputeHash("data") {
		t.Fatalf("Should get a different hash with a different strategy.")
	}
}

func Test_Unhashable(t *testing.T) {
	h := hasher.New()

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("Should panic when hashing a channel.")
		}
	}()

	h.ComputeHash(struct{ C chan int }{C: make(chan int)})
}
