package ports

import (
	"context"

	"github.com/transitops/bus-ticketing/internal/core/domain"
)

// AuditRepository persists the authentication audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditRecorder accepts audit events without blocking the request path.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}

// AuditService writes a single audit event.
type AuditService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}
