package services

import (
	"context"

	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/baharkarakas/hbnb-api/internal/policy"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 200
)

// ListAuditLogs returns the newest entries first. limit <= 0 means the default.
func (c *Catalog) ListAuditLogs(ctx context.Context, actor policy.Actor, limit int) ([]models.AuditLog, error) {
	if !policy.CanReadAuditLog(actor) {
		return nil, denied("only administrators can read the audit log")
	}
	switch {
	case limit <= 0:
		limit = DefaultAuditLimit
	case limit > MaxAuditLimit:
		limit = MaxAuditLimit
	}
	logs, err := c.store.Repos().AuditLogs.ListRecent(ctx, limit)
	if err != nil {
		return nil, c.fail("audit.list", "audit log", err)
	}
	return logs, nil
}
