package sharing

import "context"

type Repository interface {
	Create(ctx context.Context, g Grant) error
	Update(ctx context.Context, g Grant) error
	GetByID(ctx context.Context, id string) (Grant, error)
	ListByProfile(ctx context.Context, profileID string) ([]Grant, error)
	ListByGrantee(ctx context.Context, granteeUserID string) ([]Grant, error)
	GetActiveGrant(ctx context.Context, profileID, granteeUserID string) (Grant, error)
}
