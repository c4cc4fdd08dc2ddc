//go:build amd64
// +build amd64

package cpufeat

import "golang.org/x/sys/cpu"

// detectFeaturesImpl is the architecture-specific implementation of CPU
// feature detection for AMD64.
func detectFeaturesImpl() {
	hasWideCopy = cpu.X86.HasSSE2 // guaranteed on amd64, checked for documentation
}
