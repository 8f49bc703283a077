package book

import (
	"crypto/sha256"
	"encoding/hex"
)

// hash.go - Content block hashing for downstream content-addressing.

// ComputeHash calculates and stores the SHA-256 hash of the block's
// flattened text.
func (cb *ContentBlock) ComputeHash() string {
	h := sha256.Sum256([]byte(cb.FlattenText()))
	cb.Hash = hex.EncodeToString(h[:])
	return cb.Hash
}

// VerifyHash returns true if the stored hash matches the computed hash.
func (cb *ContentBlock) VerifyHash() bool {
	if cb.Hash == "" {
		return false
	}
	h := sha256.Sum256([]byte(cb.FlattenText()))
	return cb.Hash == hex.EncodeToString(h[:])
}
