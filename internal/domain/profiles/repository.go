package profiles

import "context"

type Repository interface {
	Create(ctx context.Context, p Profile) error
	Update(ctx context.Context, p Profile) error
	GetByID(ctx context.Context, id string) (Profile, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Profile, error)
	Delete(ctx context.Context, id string) error
}
