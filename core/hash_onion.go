package core

import (
	"errors"
	"sync"
)

// ErrHashOnionExhausted is returned once every layer has been peeled.
var ErrHashOnionExhausted = errors.New("hash onion: no layers left")

// HashOnion is a sender-specific chain of SHA-256 digests: layers[0] is
// the seed (the node's private key material), layers[i+1] =
// SHA-256(layers[i]). Skin, the value registered on-chain, is one more
// hash beyond the top of the chain; each Peel reveals the next
// (un-hashed) predecessor (spec.md §4.N, GLOSSARY "Hash onion"). A single
// mutator is assumed; Peel/FastForward/LayersLeft share one lock so
// concurrent readers never observe a torn slice (spec.md §5).
type HashOnion struct {
	mu     sync.Mutex
	layers [][32]byte
}

// NewHashOnion builds a chain of size layers seeded from seed.
func NewHashOnion(seed [32]byte, size int) *HashOnion {
	layers := make([][32]byte, size)
	layers[0] = seed
	for i := 1; i < size; i++ {
		layers[i] = Sha256(layers[i-1][:])
	}
	return &HashOnion{layers: layers}
}

// Skin returns the value a miner registers on-chain: SHA-256 of the
// current top of the chain.
func (h *HashOnion) Skin() [32]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.layers) == 0 {
		return [32]byte{}
	}
	return Sha256(h.layers[len(h.layers)-1][:])
}

// Peel removes and returns the current top of the chain — the pre-image
// of the previously revealed or registered skin.
func (h *HashOnion) Peel() ([32]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.layers) == 0 {
		return [32]byte{}, ErrHashOnionExhausted
	}
	v := h.layers[len(h.layers)-1]
	h.layers = h.layers[:len(h.layers)-1]
	return v, nil
}

// FastForward truncates the chain to its first (N - n) layers, used when
// resuming a node that has already mined n blocks (spec.md §4.N).
func (h *HashOnion) FastForward(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	keep := len(h.layers) - n
	if keep < 0 {
		keep = 0
	}
	h.layers = h.layers[:keep]
}

// LayersLeft returns the number of layers remaining to be peeled.
func (h *HashOnion) LayersLeft() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.layers)
}
