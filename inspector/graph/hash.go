package graph

import (
	"fmt"
	"hash"

	"github.com/minio/highwayhash"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Hash returns the highwayhash-64 of data
func Hash(data []byte) (uint64, error) {
	hasher, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = hasher.Write(data)
	return hasher.Sum64(), err
}

// Fingerprint folds a sequence of named inputs into a single hash.
// Names are length prefixed so that ("ab","c") and ("a","bc") differ.
type Fingerprint struct {
	hash hash.Hash64
}

// NewFingerprint creates an empty fingerprint
func NewFingerprint() (*Fingerprint, error) {
	h, err := highwayhash.New64(key)
	if err != nil {
		return nil, err
	}
	return &Fingerprint{hash: h}, nil
}

// Add folds a named input into the fingerprint
func (f *Fingerprint) Add(name string, data []byte) {
	fmt.Fprintf(f.hash, "%d:%s:%d:", len(name), name, len(data))
	f.hash.Write(data)
}

// Sum returns the fingerprint value
func (f *Fingerprint) Sum() uint64 {
	return f.hash.Sum64()
}

// String returns the fingerprint as fixed width hex
func (f *Fingerprint) String() string {
	return fmt.Sprintf("%016x", f.Sum())
}
