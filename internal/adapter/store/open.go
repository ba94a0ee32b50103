package store

import (
	"fmt"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// Open creates the configured store backend. typ is "file" or "bolt".
func Open(typ, path string) (port.VectorStore, error) {
	switch typ {
	case "", "file":
		return OpenFileStore(path)
	case "bolt":
		return OpenBoltStore(path)
	default:
		return nil, fmt.Errorf("%w: unknown store type %q", domain.ErrValidation, typ)
	}
}
