package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for dispatch deliveries.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, d Delivery) error
}

// Service records dispatch deliveries.
//
// Callers treat recording as best-effort: failures are logged by the
// caller and never block a dispatch.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidDelivery = errors.New("audit: invalid delivery")

func (s *Service) Record(ctx context.Context, d Delivery) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if d.Source == "" {
		return ErrInvalidDelivery
	}

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.ReceivedAt.IsZero() {
		d.ReceivedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, d)
}
