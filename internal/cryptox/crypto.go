// Package cryptox implements the one-way hashing used for code
// credentials. The raw code never leaves this package unhashed.
package cryptox

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// SaltSize is the per-user random salt length in bytes.
const SaltSize = 16

// HashCode derives an irreversible 32-byte digest of code with the given
// salt using Argon2id. The same code and salt always produce the same
// digest; without the salt the code cannot be brute-forced from rainbow
// tables.
func HashCode(code []byte, salt []byte) []byte {
	return argon2.IDKey(code, salt, 1, 64*1024, 4, 32)
}

// VerifyCode compares a candidate code against a stored hash in constant
// time.
func VerifyCode(code []byte, salt []byte, storedHash []byte) bool {
	candidate := HashCode(code, salt)
	return subtle.ConstantTimeCompare(candidate, storedHash) == 1
}
