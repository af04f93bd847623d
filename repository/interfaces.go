package repository

import (
	"context"

	"dropshipManagement/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, username, role string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

// ShipmentRepositoryI defines operations on Shipment entities.
// GetByID returns (nil, nil) when no shipment matches.
type ShipmentRepositoryI interface {
	Create(ctx context.Context, s *models.Shipment) (*models.Shipment, error)
	GetByID(ctx context.Context, id string) (*models.Shipment, error)
	// UpdateTransition persists the full transition state of s (status,
	// flags, proof, captured forms) as one atomic write guarded by
	// s.Version. It returns ErrVersionConflict when the stored version no
	// longer matches and bumps s.Version on success.
	UpdateTransition(ctx context.Context, s *models.Shipment) error
	ListAdmin(ctx context.Context, p ListShipmentsParams) ([]models.Shipment, error)
	ListByUser(ctx context.Context, userID int64, pageSize int, afterSeconds int64, afterID string) ([]models.Shipment, error)
}
