package core

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"
)

// Sha256 hashes b with SHA-256 (spec.md §4.C).
func Sha256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// Keccak256 hashes b with Keccak-256 (spec.md §4.C).
func Keccak256(b []byte) [32]byte {
	var out [32]byte
	copy(out[:], crypto.Keccak256(b))
	return out
}

// Ed25519Verify checks an Ed25519 signature over msg (spec.md §4.C, used
// by System.Migrate to authenticate a legacy Ed25519 address).
func Ed25519Verify(msg, verifyingKey, signature []byte) error {
	if len(verifyingKey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: bad public key length", ErrInvalidSignature)
	}
	if !ed25519.Verify(ed25519.PublicKey(verifyingKey), msg, signature) {
		return ErrInvalidSignature
	}
	return nil
}

// normalizeRecoveryID accepts the recovery-id encodings spec.md §4.C
// requires: a bare 0/1, Bitcoin-style 27/28, or an Ethereum EIP-155
// chain-id-encoded value (35 + chainID*2 + recoveryID, always >= 35).
func normalizeRecoveryID(v byte) (byte, error) {
	switch {
	case v == 0 || v == 1:
		return v, nil
	case v == 27 || v == 28:
		return v - 27, nil
	case v >= 35:
		return (v - 35) % 2, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized recovery id %d", ErrInvalidSignature, v)
	}
}

// Ecrecover recovers the Ethereum-style Address that produced signature
// over hash (spec.md §4.C). signature is 65 bytes: r(32) || s(32) || v(1),
// where v is any of the encodings normalizeRecoveryID accepts.
func Ecrecover(hash [32]byte, signature []byte) (Address, error) {
	if len(signature) != 65 {
		return Address{}, fmt.Errorf("%w: signature must be 65 bytes", ErrInvalidSignature)
	}
	recID, err := normalizeRecoveryID(signature[64])
	if err != nil {
		return Address{}, err
	}
	sig := make([]byte, 65)
	copy(sig, signature[:64])
	sig[64] = recID
	pub, err := crypto.SigToPub(hash[:], sig)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}
	return AddressFromPublicKey(crypto.FromECDSAPub(pub))
}

// GenerateSecp256k1Key creates a new secp256k1 signing key, returning its
// 32-byte private key, 65-byte uncompressed public key, and derived
// Address, for the `generate-keypair` CLI and a node's own mining key.
func GenerateSecp256k1Key() (privateKey [32]byte, uncompressedPublicKey []byte, address Address, err error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return privateKey, nil, Address{}, err
	}
	copy(privateKey[:], key.Serialize())
	pub := key.PubKey().SerializeUncompressed()
	addr, err := AddressFromPublicKey(pub)
	return privateKey, pub, addr, err
}

// PublicKeyFromPrivateKey derives the uncompressed public key and
// Address for an existing 32-byte secp256k1 private key, used when a
// node loads its signing key from the PRIVATE_KEY environment variable
// rather than generating a fresh one (spec.md §6).
func PublicKeyFromPrivateKey(privateKey [32]byte) (uncompressedPublicKey []byte, address Address, err error) {
	key := secp256k1.PrivKeyFromBytes(privateKey[:])
	pub := key.PubKey().SerializeUncompressed()
	addr, err := AddressFromPublicKey(pub)
	return pub, addr, err
}

// SignSecp256k1 produces a 65-byte recoverable signature (r||s||v, v in
// {0,1}) over hash using the given 32-byte private key.
func SignSecp256k1(privateKey [32]byte, hash [32]byte) ([]byte, error) {
	key := secp256k1.PrivKeyFromBytes(privateKey[:])
	sig, err := ecdsa.SignCompact(key, hash[:], false)
	if err != nil {
		return nil, err
	}
	// ecdsa.SignCompact returns recovery-id-prefixed (1 + r||s); spec.md
	// §6 wants r||s||v instead, matching Ethereum's personal-sign layout.
	out := make([]byte, 65)
	copy(out[0:64], sig[1:65])
	out[64] = sig[0] - 27
	return out, nil
}
