package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Low iteration counts keep the tests fast; production uses
// DefaultIterations.
var testHasher = Hasher{Iterations: 1000}

func TestHashAndVerify(t *testing.T) {
	encoded, err := testHasher.Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, testHasher.Verify("correct horse battery staple", encoded))
	assert.False(t, testHasher.Verify("correct horse battery stable", encoded))
	assert.False(t, testHasher.Verify("", encoded))
}

func TestHashNeverContainsPlaintext(t *testing.T) {
	encoded, err := testHasher.Hash("hunter2-hunter2")
	require.NoError(t, err)
	assert.NotContains(t, encoded, "hunter2")
	assert.True(t, strings.HasPrefix(encoded, "pbkdf2-sha256$"))
}

func TestHashesAreSalted(t *testing.T) {
	first, err := testHasher.Hash("same password")
	require.NoError(t, err)
	second, err := testHasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, testHasher.Verify("same password", first))
	assert.True(t, testHasher.Verify("same password", second))
}

func TestVerifyEncodedIterations(t *testing.T) {
	// The iteration count travels with the hash, so a hasher configured
	// differently still verifies older hashes.
	encoded, err := Hasher{Iterations: 2000}.Hash("a password")
	require.NoError(t, err)
	assert.True(t, Hasher{Iterations: 500}.Verify("a password", encoded))
}

func TestVerifyMalformedEncodings(t *testing.T) {
	for _, encoded := range []string{
		"",
		"not-a-hash",
		"pbkdf2-sha256$abc$salt$key",
		"pbkdf2-sha256$0$c2FsdA$a2V5",
		"bcrypt$1000$c2FsdA$a2V5",
		"pbkdf2-sha256$1000$!!!$a2V5",
	} {
		assert.False(t, testHasher.Verify("password", encoded), "encoded %q", encoded)
	}
}

func TestZeroValueUsesDefaultIterations(t *testing.T) {
	assert.Equal(t, DefaultIterations, Hasher{}.iterations())
}
