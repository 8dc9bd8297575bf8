/*
Package hash provides content hashes used to address stored entities.
*/
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Size is the size of a content hash in bytes.
const Size = sha256.Size

// Hash is a content hash.
type Hash [Size]byte

// Sha256 hashes the incoming byte slice using the sha256 algorithm.
func Sha256(data []byte) Hash {
	return sha256.Sum256(data)
}

// DoubleSha256 performs sha256 twice on the given data.
func DoubleSha256(data []byte) Hash {
	h := Sha256(data)
	return Sha256(h[:])
}

// Checksum returns the checksum for a given piece of data using sha256
// twice as the hash algorithm.
func Checksum(data []byte) []byte {
	h := DoubleSha256(data)
	return h[:4]
}

// String implements the fmt.Stringer interface.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}
