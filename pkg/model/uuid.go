package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// UUIDGenerator supplies identifiers for newly created nodes.
type UUIDGenerator interface {
	NewUUID() string
}

type randomUUIDs struct{}

func (randomUUIDs) NewUUID() string {
	return uuid.NewString()
}

// RandomUUIDs generates random (version 4) UUIDs.
var RandomUUIDs UUIDGenerator = randomUUIDs{}

// SequentialUUIDs hands out "<prefix>-0", "<prefix>-1", ... and is safe for
// concurrent use. Tests use it to make node identity deterministic.
type SequentialUUIDs struct {
	prefix string
	next   atomic.Int64
}

// NewSequentialUUIDs returns a generator starting at "<prefix>-0".
func NewSequentialUUIDs(prefix string) *SequentialUUIDs {
	return &SequentialUUIDs{prefix: prefix}
}

// NewUUID implements UUIDGenerator.
func (s *SequentialUUIDs) NewUUID() string {
	n := s.next.Add(1) - 1
	return fmt.Sprintf("%s-%d", s.prefix, n)
}

// MetadataUUIDFor derives the stable metadata UUID of a component file from
// its path. The extension is ignored so Foo.tsx and an import of "./Foo"
// agree.
func MetadataUUIDFor(path string) string {
	trimmed := strings.TrimSuffix(filepath.ToSlash(path), filepath.Ext(path))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(trimmed)).String()
}
