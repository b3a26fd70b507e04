package projection

import "time"

// Metadata captures persistence timestamps shared by projections.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Projection represents an aggregate view plus persistence metadata.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// New wraps an entity with its persistence timestamps.
func New[T any](entity T, createdAt, updatedAt time.Time) Projection[T] {
	return Projection[T]{Entity: entity, Metadata: Metadata{CreatedAt: createdAt, UpdatedAt: updatedAt}}
}

// Entities strips metadata from a slice of projections, skipping nil entries.
func Entities[T any](items []*Projection[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, item.Entity)
		}
	}
	return out
}
