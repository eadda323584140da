package consult

import (
	"context"
	"database/sql"
	"time"

	"evolve-engine/internal/domain"
	"evolve-engine/internal/store"

	"github.com/google/uuid"
)

// StoreIntake records requests in the consultations table.
type StoreIntake struct {
	DB  *sql.DB
	Now func() time.Time
}

func (s *StoreIntake) Submit(ctx context.Context, req Request) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return store.InsertConsultation(ctx, s.DB, domain.Consultation{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Company:   req.Company,
		Details:   req.Details,
		CreatedAt: now().UTC(),
	})
}
