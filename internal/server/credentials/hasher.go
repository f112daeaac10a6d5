// Package credentials turns passwords into the digests stored with accounts.
//
// A digest is a deterministic one-way transform of pepper+password. The
// pepper is one process-wide secret, not a per-account salt, so the same
// password under the same pepper always yields the same digest and login can
// look accounts up by (name, digest).
package credentials

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	AlgorithmMD5      = "md5"
	AlgorithmArgon2ID = "argon2id"

	// DefaultPepper matches digests written by earlier deployments.
	DefaultPepper = "mysalt"
)

// Hasher computes password digests. Digest is defined for every input,
// including the empty string.
type Hasher interface {
	Digest(password string) string
	Algorithm() string
}

// NewHasher returns the hasher for algorithm ("md5" when empty).
func NewHasher(algorithm, pepper string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmMD5:
		return MD5Hasher{Pepper: pepper}, nil
	case AlgorithmArgon2ID:
		return NewArgon2Hasher(pepper), nil
	default:
		return nil, fmt.Errorf("unknown digest algorithm %q", algorithm)
	}
}

// MD5Hasher produces the lowercase hex md5 of pepper+password. It is kept
// for compatibility with existing account rows.
type MD5Hasher struct {
	Pepper string
}

func (h MD5Hasher) Digest(password string) string {
	sum := md5.Sum([]byte(h.Pepper + password))
	return hex.EncodeToString(sum[:])
}

func (MD5Hasher) Algorithm() string { return AlgorithmMD5 }

// Argon2Hasher derives a 32-byte argon2id key from pepper+password. The
// argon2 salt is sha256(pepper) so the digest stays deterministic.
type Argon2Hasher struct {
	pepper string
	salt   []byte
}

func NewArgon2Hasher(pepper string) *Argon2Hasher {
	salt := sha256.Sum256([]byte(pepper))
	return &Argon2Hasher{pepper: pepper, salt: salt[:]}
}

func (h *Argon2Hasher) Digest(password string) string {
	key := argon2.IDKey([]byte(h.pepper+password), h.salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(key)
}

func (*Argon2Hasher) Algorithm() string { return AlgorithmArgon2ID }
