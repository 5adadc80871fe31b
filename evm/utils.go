package evm

import "math"

// SizeInWords returns the number of 32-byte words needed to hold size
// bytes (size/32 rounded up), saturating at math.MaxUint64/32 instead of
// overflowing. Used throughout the gas schedule to convert a byte length
// into a 32-byte-word count.
func SizeInWords(size uint64) uint64 {
	if size > math.MaxUint64-31 {
		return math.MaxUint64 / 32
	}
	return (size + 31) / 32
}

const maxCallDepth = 1024

// MaxCallDepth is the deepest a nested call/create may recurse before
// dispatch is refused and the caller observes a failed nested call instead
// of a propagated error (spec §5/§7: call_depth_exceeded).
func MaxCallDepth() int { return maxCallDepth }
