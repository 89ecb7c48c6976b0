package signature_test

import (
	"testing"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	from     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	message := []byte("Bill")

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	sig, err := signature.Sign(message, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	pubKey := signature.PublicKeyHex(pk.PublicKey)
	if !signature.Verify(pubKey, message, sig) {
		t.Fatalf("Should be able to verify the signature.")
	}

	if signature.Verify(pubKey, []byte("Jill"), sig) {
		t.Fatalf("Should not verify the signature for different data.")
	}

	addr, err := signature.AddressFromPublicKeyHex(pubKey)
	if err != nil {
		t.Fatalf("Should be able to generate an address: %s", err)
	}

	if from != addr {
		t.Logf("got: %s", addr)
		t.Logf("exp: %s", from)
		t.Fatalf("Should get back the right address.")
	}

	if !signature.IsAddress(addr) {
		t.Fatalf("Should recognize the address as valid.")
	}
}

func Test_WrongKey(t *testing.T) {
	message := []byte("Bill")

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	other, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	sig, err := signature.Sign(message, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if signature.Verify(signature.PublicKeyHex(other.PublicKey), message, sig) {
		t.Fatalf("Should not verify the signature with another public key.")
	}

	if signature.Verify("0xzz", message, sig) {
		t.Fatalf("Should not verify with a malformed public key.")
	}

	if signature.Verify(signature.PublicKeyHex(pk.PublicKey), message, "0x00") {
		t.Fatalf("Should not verify a malformed signature.")
	}
}
