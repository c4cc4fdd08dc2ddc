//go:build !amd64 && !arm64
// +build !amd64,!arm64

package cpufeat

// detectFeaturesImpl is the fallback implementation for architectures
// with no known fast wide-copy path.
func detectFeaturesImpl() {
	hasWideCopy = false
}
