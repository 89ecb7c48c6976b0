// Package wallet derives deterministic key pairs and addresses from a password
// so a wallet can be recovered from the password alone.
package wallet

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/scrypt"
)

// Set of error variables for wallet operations.
var (
	ErrEmptyPassword       = errors.New("password can't be empty")
	ErrMissingPasswordHash = errors.New("wallet has no password hash")
	ErrKeyNotFound         = errors.New("key pair not found in wallet")
)

// Fixed domain strings. Changing any of these changes every derived address.
const (
	passwordSalt = "naivecoin-wallet-password"
	secretSalt   = "naivecoin-wallet-secret"
	keyLength    = 32
)

// =============================================================================

// PasswordHasher creates a wallet holding only the slow hash of a password.
type PasswordHasher interface {
	CreateFromPassword(password string) (Wallet, error)
}

// SecretGenerator derives the wallet secret from the password hash.
type SecretGenerator interface {
	GenerateSecret(w *Wallet) ([]byte, error)
}

// AddressDeriver derives the key pair for an address index.
type AddressDeriver interface {
	DeriveAddress(w *Wallet, index uint32) (KeyPair, error)
}

// Signer signs and verifies messages with derived key pairs.
type Signer interface {
	Sign(kp KeyPair, message []byte) (string, error)
	Verify(publicKey string, message []byte, sig string) bool
}

// =============================================================================

// KeyPair is a derived secp256k1 key and the address it controls.
type KeyPair struct {
	Index      uint32 `json:"index"`
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
	Address    string `json:"address"`
}

// ECDSA returns the private key of the pair.
func (kp KeyPair) ECDSA() (*ecdsa.PrivateKey, error) {
	b, err := hexutil.Decode(kp.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("decoding private key: %w", err)
	}

	return crypto.ToECDSA(b)
}

// Wallet holds the password hash, the derived secret and the ordered list of
// derived key pairs. The JSON form is what callers persist.
type Wallet struct {
	ID           string    `json:"id"`
	PasswordHash string    `json:"password_hash"`
	Secret       string    `json:"secret,omitempty"`
	Addresses    []KeyPair `json:"addresses"`
}

// Lookup finds the key pair for the specified address. Addresses match
// without regard to case like everywhere else in the ledger.
func (w *Wallet) Lookup(address string) (KeyPair, bool) {
	for _, kp := range w.Addresses {
		if strings.EqualFold(kp.Address, address) {
			return kp, true
		}
	}

	return KeyPair{}, false
}

// =============================================================================

// Config represents the cost parameters of the password hash.
type Config struct {
	ScryptN int
	ScryptR int
	ScryptP int
}

// Keyring implements the wallet capabilities.
type Keyring struct {
	cfg Config
}

// New constructs a keyring. Zero values in the config take the defaults.
func New(cfg Config) *Keyring {
	if cfg.ScryptN == 0 {
		cfg.ScryptN = 1 << 15
	}
	if cfg.ScryptR == 0 {
		cfg.ScryptR = 8
	}
	if cfg.ScryptP == 0 {
		cfg.ScryptP = 1
	}

	return &Keyring{cfg: cfg}
}

// CreateFromPassword hashes the password and returns a wallet that stores
// only the hash.
func (k *Keyring) CreateFromPassword(password string) (Wallet, error) {
	if password == "" {
		return Wallet{}, ErrEmptyPassword
	}

	hash, err := scrypt.Key([]byte(password), []byte(passwordSalt), k.cfg.ScryptN, k.cfg.ScryptR, k.cfg.ScryptP, keyLength)
	if err != nil {
		return Wallet{}, fmt.Errorf("hashing password: %w", err)
	}

	w := Wallet{
		ID:           uuid.NewString(),
		PasswordHash: hexutil.Encode(hash),
		Addresses:    []KeyPair{},
	}

	return w, nil
}

// GenerateSecret derives the secret from the password hash and records it in
// the wallet.
func (k *Keyring) GenerateSecret(w *Wallet) ([]byte, error) {
	if w.PasswordHash == "" {
		return nil, ErrMissingPasswordHash
	}

	hash, err := hexutil.Decode(w.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("decoding password hash: %w", err)
	}

	secret := make([]byte, keyLength)
	r := hkdf.New(sha256.New, hash, []byte(secretSalt), nil)
	if _, err := io.ReadFull(r, secret); err != nil {
		return nil, fmt.Errorf("deriving secret: %w", err)
	}

	w.Secret = hexutil.Encode(secret)

	return secret, nil
}

// DeriveAddress derives the key pair for the index and appends it to the
// wallet if it isn't already there. The caller must persist the wallet before
// the address is handed out.
func (k *Keyring) DeriveAddress(w *Wallet, index uint32) (KeyPair, error) {
	if kp, exists := w.lookupIndex(index); exists {
		return kp, nil
	}

	secret, err := k.GenerateSecret(w)
	if err != nil {
		return KeyPair{}, err
	}

	r := hkdf.New(sha256.New, secret, nil, fmt.Appendf(nil, "address/%d", index))

	// Keep reading from the same stream until the bytes form a valid scalar.
	// The stream is deterministic so the retry is as well.
	var privateKey *ecdsa.PrivateKey
	for {
		b := make([]byte, keyLength)
		if _, err := io.ReadFull(r, b); err != nil {
			return KeyPair{}, fmt.Errorf("deriving key: %w", err)
		}

		if privateKey, err = crypto.ToECDSA(b); err == nil {
			break
		}
	}

	kp := KeyPair{
		Index:      index,
		PrivateKey: hexutil.Encode(crypto.FromECDSA(privateKey)),
		PublicKey:  signature.PublicKeyHex(privateKey.PublicKey),
		Address:    signature.PublicKeyToAddress(privateKey.PublicKey),
	}

	w.Addresses = append(w.Addresses, kp)

	return kp, nil
}

// Restore rebuilds a wallet from the password and derives the first count
// addresses.
func (k *Keyring) Restore(password string, count int) (Wallet, error) {
	w, err := k.CreateFromPassword(password)
	if err != nil {
		return Wallet{}, err
	}

	for i := range count {
		if _, err := k.DeriveAddress(&w, uint32(i)); err != nil {
			return Wallet{}, err
		}
	}

	return w, nil
}

// Sign signs the message with the key pair.
func (k *Keyring) Sign(kp KeyPair, message []byte) (string, error) {
	privateKey, err := kp.ECDSA()
	if err != nil {
		return "", err
	}

	return signature.Sign(message, privateKey)
}

// Verify checks the signature against the public key.
func (k *Keyring) Verify(publicKey string, message []byte, sig string) bool {
	return signature.Verify(publicKey, message, sig)
}

// =============================================================================

func (w *Wallet) lookupIndex(index uint32) (KeyPair, bool) {
	for _, kp := range w.Addresses {
		if kp.Index == index {
			return kp, true
		}
	}

	return KeyPair{}, false
}
