package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows changing
// the hashed shape later without colliding with stored hashes.
const (
	DomainInstance = "otioremap/instance/v1"
	DomainSession  = "otioremap/session/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the domain-separated SHA-256 of v's canonical JSON.
func Hash(domain string, v any) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

// InstanceHash identifies collected instance data. Re-collecting a shot
// with unchanged inputs yields the same hash, which the session ledger
// uses to skip duplicates.
func InstanceHash(data map[string]any) (string, error) {
	return Hash(DomainInstance, data)
}

// SessionHash identifies a publish session by its source document and
// collector settings.
func SessionHash(source string, settings map[string]any) (string, error) {
	return Hash(DomainSession, map[string]any{
		"source":   source,
		"settings": settings,
	})
}

// MustHash is like Hash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustHash(domain string, v any) string {
	h, err := Hash(domain, v)
	if err != nil {
		panic(err)
	}
	return h
}
