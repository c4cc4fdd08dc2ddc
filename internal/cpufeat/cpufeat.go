// Package cpufeat detects CPU features that let the block decoder
// (internal/block) widen its bulk-copy stride for non-overlapping literal
// and match copies. It is adapted from the teacher's encode-side SIMD
// match-finder feature detector; here it gates a decode-side copy path
// instead of a match search.
package cpufeat

import "sync"

// Features reports which widened-copy strides are safe to use on the
// current CPU.
type Features struct {
	// WideCopy is true when the platform has a fast unaligned wide move
	// (SSE2 on amd64, NEON/ASIMD on arm64) worth using for non-overlapping
	// bulk copies larger than a few words.
	WideCopy bool
}

var (
	hasWideCopy bool
	detectOnce  sync.Once
)

// Detect returns the CPU features available on this machine, computing
// them once and caching the result.
func Detect() Features {
	detectOnce.Do(detectFeatures)
	return Features{WideCopy: hasWideCopy}
}

// detectFeatures is implemented per-architecture in cpu_amd64.go,
// cpu_arm64.go, and cpu_other.go.
func detectFeatures() {
	detectFeaturesImpl()
}
