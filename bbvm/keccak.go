package bbvm

import (
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/christianparpart/evmone/evm"
)

// keccakHasherPool recycles sha3.NewLegacyKeccak256 hasher state across
// calls, the same way the teacher's lfvm package pools its pure-Go
// fallback hasher (this module has no cgo bridge, so that fallback is the
// only Keccak-256 path here).
var keccakHasherPool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256() }}

type keccakHasher interface {
	Reset()
	Write(in []byte) (int, error)
	Read(out []byte) (int, error)
}

// Keccak256 computes the Keccak-256 digest of data.
func Keccak256(data []byte) evm.Hash {
	hasher := keccakHasherPool.Get().(keccakHasher)
	hasher.Reset()
	hasher.Write(data)
	var res evm.Hash
	hasher.Read(res[:])
	keccakHasherPool.Put(hasher)
	return res
}
