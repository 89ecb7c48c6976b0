// Package signature provides helper functions for handling the blockchain
// signature needs.
package signature

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// naivecoinID is an arbitrary number for signing messages. This will make it
// clear that the signature comes from the naivecoin blockchain.
// Ethereum and Bitcoin do this as well, but they use the value of 27.
const naivecoinID = 29

// =============================================================================

// Sign uses the specified private key to sign the message. The signature is
// returned hex encoded in the [R|S|V] format.
func Sign(message []byte, privateKey *ecdsa.PrivateKey) (string, error) {
	data := stamp(message)

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return "", err
	}

	// Check the public key extracted from the data and signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return "", err
	}

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return "", errors.New("invalid signature")
	}

	sig[crypto.RecoveryIDOffset] += naivecoinID

	return hexutil.Encode(sig), nil
}

// Verify checks the signature was produced over the message by the private
// key that belongs to the specified hex encoded public key.
func Verify(publicKey string, message []byte, signature string) bool {
	pk, err := hexutil.Decode(publicKey)
	if err != nil {
		return false
	}

	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return false
	}

	// Check the recovery id is either 0 or 1.
	v := sig[crypto.RecoveryIDOffset] - naivecoinID
	if v != 0 && v != 1 {
		return false
	}

	// Check the signature values are valid.
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return false
	}

	return crypto.VerifySignature(pk, stamp(message), sig[:crypto.RecoveryIDOffset])
}

// =============================================================================

// PublicKeyHex returns the compressed public key hex encoded.
func PublicKeyHex(publicKey ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.CompressPubkey(&publicKey))
}

// ToPublicKey converts a hex encoded compressed public key.
func ToPublicKey(publicKey string) (*ecdsa.PublicKey, error) {
	pk, err := hexutil.Decode(publicKey)
	if err != nil {
		return nil, err
	}

	return crypto.DecompressPubkey(pk)
}

// PublicKeyToAddress returns the checksummed address for the public key.
func PublicKeyToAddress(publicKey ecdsa.PublicKey) string {
	return crypto.PubkeyToAddress(publicKey).Hex()
}

// AddressFromPublicKeyHex returns the address for a hex encoded public key.
func AddressFromPublicKeyHex(publicKey string) (string, error) {
	pk, err := ToPublicKey(publicKey)
	if err != nil {
		return "", err
	}

	return PublicKeyToAddress(*pk), nil
}

// IsAddress verifies the string represents a valid hex encoded address.
func IsAddress(address string) bool {
	return common.IsHexAddress(address)
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents the message with the
// naivecoin stamp embedded into the final hash.
func stamp(message []byte) []byte {

	// Hash the message into a 32 byte array. This will provide
	// a data length consistency with all messages.
	msgHash := crypto.Keccak256(message)

	// This stamp is used so signatures we produce when signing messages
	// are always unique to the naivecoin blockchain.
	stamp := []byte("\x19Naivecoin Signed Message:\n32")

	// Hash the stamp and msgHash together in a final 32 byte array
	// that represents the message.
	return crypto.Keccak256(stamp, msgHash)
}
