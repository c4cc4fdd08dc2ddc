//go:build arm64
// +build arm64

package cpufeat

import "golang.org/x/sys/cpu"

// detectFeaturesImpl is the architecture-specific implementation of CPU
// feature detection for ARM64.
func detectFeaturesImpl() {
	hasWideCopy = cpu.ARM64.HasASIMD
}
