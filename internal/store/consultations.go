package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"evolve-engine/internal/domain"
)

func InsertConsultation(ctx context.Context, db *sql.DB, c domain.Consultation) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO consultations (id, name, email, company, details, created_at)
VALUES (?, ?, ?, ?, ?, ?);`,
		c.ID, c.Name, c.Email, c.Company, c.Details, c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert consultation: %w", err)
	}
	return nil
}

// ListConsultations returns the newest requests first.
func ListConsultations(ctx context.Context, db *sql.DB, limit int) ([]domain.Consultation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, name, email, company, details, created_at
FROM consultations
ORDER BY created_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Consultation
	for rows.Next() {
		var c domain.Consultation
		var created string
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Company, &c.Details, &created); err != nil {
			return nil, err
		}
		at, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("consultation %s: created_at: %w", c.ID, err)
		}
		c.CreatedAt = at
		out = append(out, c)
	}
	return out, rows.Err()
}
