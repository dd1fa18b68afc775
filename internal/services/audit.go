package services

import (
	"context"

	"github.com/librarylab/library-backend/internal/models"
	repo "github.com/librarylab/library-backend/internal/repository"
	"github.com/librarylab/library-backend/internal/worker"
)

// auditor writes audit entries through the worker pool so mutations do not
// wait on the audit table.
type auditor struct {
	logs repo.AuditLogs
	wp   *worker.Pool
}

func (a auditor) record(entityType, entityID, action string, details map[string]any) {
	id := entityID
	a.wp.Submit(func() {
		_ = a.logs.Create(context.Background(), models.AuditLog{
			EntityType: entityType,
			EntityID:   &id,
			Action:     action,
			Details:    details,
		})
	})
}
