package core

import (
	"context"
	"fmt"

	"github.com/desslyhub/platform/internal/model"
)

// AuditService writes and reads the append-only audit trail. Record is
// synchronous: a call is not considered authorized until its audit row is
// durable.
type AuditService struct {
	db DB
}

func NewAuditService(db DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Record(ctx context.Context, path, method, clientIP string, apiTokenID *string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO audit_records (path, method, client_ip, api_token_id) VALUES ($1, $2, $3, $4)`,
		path, method, clientIP, apiTokenID,
	)
	if err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

func (s *AuditService) List(ctx context.Context, offset, limit int) ([]model.AuditRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, path, method, client_ip, api_token_id, created_at
		 FROM audit_records ORDER BY id DESC OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var records []model.AuditRecord
	for rows.Next() {
		var rec model.AuditRecord
		if err := rows.Scan(&rec.ID, &rec.Path, &rec.Method, &rec.ClientIP, &rec.APITokenID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}
