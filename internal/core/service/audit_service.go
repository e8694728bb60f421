package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/transitops/bus-ticketing/internal/core/domain"
	"github.com/transitops/bus-ticketing/internal/core/ports"
	"github.com/transitops/bus-ticketing/internal/pkg/metrics"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists events through repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process persists one audit event.
func (s *auditService) Process(ctx context.Context, ev domain.AuthEvent) error {
	if ev.Type == "" {
		return fmt.Errorf("process audit event: %w: missing type", domain.ErrValidation)
	}

	if err := s.repo.InsertEvent(ctx, &ev); err != nil {
		metrics.AuditEventsTotal.WithLabelValues(string(ev.Type), "error").Inc()
		return fmt.Errorf("process audit event: %w", err)
	}

	metrics.AuditEventsTotal.WithLabelValues(string(ev.Type), "stored").Inc()
	s.log.Debug().
		Str("type", string(ev.Type)).
		Str("subject", ev.Subject).
		Str("reason", ev.Reason).
		Msg("audit event stored")
	return nil
}
