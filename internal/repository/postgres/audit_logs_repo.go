package postgres

import (
	"context"

	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/google/uuid"
)

type auditLogsRepo struct{ q querier }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO audit_logs(id, entity_type, entity_id, action, actor_id, details) VALUES($1,$2,$3,$4,$5,$6)`,
		l.ID, l.EntityType, l.EntityID, l.Action, l.ActorID, l.Details,
	)
	return mapErr(err)
}

func (r *auditLogsRepo) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, entity_type, entity_id, action, actor_id, details, created_at
		   FROM audit_logs
		  ORDER BY created_at DESC, id
		  LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []models.AuditLog{}
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.EntityType, &l.EntityID, &l.Action, &l.ActorID, &l.Details, &l.CreatedAt); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, l)
	}
	return out, mapErr(rows.Err())
}
