package pets

import "context"

// Repository: GetByID devuelve ErrNotFound si la mascota no existe.
type Repository interface {
	Create(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)
}
