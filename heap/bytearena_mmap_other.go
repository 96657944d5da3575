//go:build !unix

package heap

import "fmt"

// NewByteArenaMmap is unavailable outside unix build targets: there is no
// portable golang.org/x/sys mmap call this package reaches for on Windows,
// mirroring internal/mmfile's own windows.go falling back to a plain
// os.ReadFile rather than a real mapping. Callers that want a build-time
// guarantee should gate this path behind the same "unix" build tag.
func NewByteArenaMmap(path string, size int32) (*ByteArena, func() error, error) {
	return nil, nil, fmt.Errorf("heap: mmap-backed byte arena is not available on this platform")
}
