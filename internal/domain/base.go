package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Base carries the fields every stored record has
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Meta exposes the embedded Base so generic code can stamp ids and timestamps
func (b *Base) Meta() *Base { return b }

// Entity is implemented by pointers to every stored record
type Entity interface {
	Meta() *Base
}

// NewID returns "<unix-millis>-<9 char suffix>". Uniqueness is probabilistic.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

// Collection is an insertion-ordered keyed store for one record type.
// Implementations return copies; callers never share memory with the store.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Put(ctx context.Context, id string, value T) error
}
