package service

import (
	"context"
	"fmt"

	"brandforge/internal/domain"
)

// TargetLoader loads one kind of shareable/exportable entity by its opaque
// id.
type TargetLoader func(ctx context.Context, id string) (domain.Target, error)

// TargetResolver maps polymorphic (type tag, id) references onto loaded
// entities. New target kinds register a loader; the managers never switch on
// concrete types.
type TargetResolver struct {
	loaders map[string]TargetLoader
}

func NewTargetResolver() *TargetResolver {
	return &TargetResolver{loaders: make(map[string]TargetLoader)}
}

func (r *TargetResolver) Register(targetType string, loader TargetLoader) {
	r.loaders[targetType] = loader
}

func (r *TargetResolver) Resolve(ctx context.Context, targetType, id string) (domain.Target, error) {
	loader, ok := r.loaders[targetType]
	if !ok {
		return nil, fmt.Errorf("unknown target type %q", targetType)
	}
	return loader(ctx, id)
}

// Known reports whether the type tag has a registered loader.
func (r *TargetResolver) Known(targetType string) bool {
	_, ok := r.loaders[targetType]
	return ok
}
