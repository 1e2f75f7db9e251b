// Package credential hashes and verifies account passwords with
// salted, iterated PBKDF2-SHA256. The encoded form carries its own
// parameters so the work factor can be raised without invalidating
// existing hashes.
package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	scheme = "pbkdf2-sha256"

	// DefaultIterations is the PBKDF2 round count for new hashes.
	DefaultIterations = 290_000

	saltLen = 16
	keyLen  = 32
)

// Hasher derives and verifies password hashes. The zero value uses
// DefaultIterations.
type Hasher struct {
	Iterations int
}

func (h Hasher) iterations() int {
	if h.Iterations > 0 {
		return h.Iterations
	}
	return DefaultIterations
}

// Hash derives a salted hash of password. The plaintext is never stored.
// Encoded form: pbkdf2-sha256$<iterations>$<salt-b64>$<key-b64>
func (h Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	iter := h.iterations()
	key := pbkdf2.Key([]byte(password), salt, iter, keyLen, sha256.New)

	return fmt.Sprintf("%s$%d$%s$%s",
		scheme,
		iter,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the encoded hash. Malformed
// encodings verify as false rather than erroring, so a corrupted stored
// hash behaves like a wrong password.
func (h Hasher) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != scheme {
		return false
	}

	iter, err := strconv.Atoi(parts[1])
	if err != nil || iter <= 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil || len(want) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(password), salt, iter, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
