package service

import (
	"context"

	"github.com/competehub/compete-api/internal/service/registration"
)

// Registrar mutates list fields inside documents. *registration.Service
// implements it.
type Registrar interface {
	Register(ctx context.Context, list registration.List, parentID, key string, entry any) (registration.Entries, error)
	Unregister(ctx context.Context, list registration.List, parentID, key string) (registration.Entries, error)
	Append(ctx context.Context, list registration.List, parentID string, entry any) (registration.Entries, error)
}

var _ Registrar = (*registration.Service)(nil)
