// Package scheduler tareas periódicas del servicio de reservas.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/inventory"
	"github.com/jhoicas/reservas-api/pkg/logger"
)

// SystemActor actor con el que el job registra movimientos y eventos.
var SystemActor = entity.Actor{UserID: "system", Role: entity.RoleAdmin}

// Expirer lo que el job necesita del servicio de inventario.
type Expirer interface {
	ExpireOverdue(ctx context.Context, actor entity.Actor, now time.Time) ([]*inventory.Outcome, error)
}

// ExpiryScheduler rechaza con motivo "vencida" las reservas activas pasadas de su vencimiento.
type ExpiryScheduler struct {
	cron    *cron.Cron
	svc     Expirer
	log     *logger.Logger
	timeout time.Duration
}

// NewExpiryScheduler programa el job con spec en formato cron de 5 campos o descriptor ("@every 5m").
func NewExpiryScheduler(svc Expirer, spec string, log *logger.Logger) (*ExpiryScheduler, error) {
	s := &ExpiryScheduler{
		cron:    cron.New(),
		svc:     svc,
		log:     log.Component("expiry_scheduler"),
		timeout: 30 * time.Second,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("programar vencimiento de reservas %q: %w", spec, err)
	}
	s.log.Info().Str("spec", spec).Msg("vencimiento de reservas programado")
	return s, nil
}

// Start arranca el cron en su propia goroutine.
func (s *ExpiryScheduler) Start() {
	s.cron.Start()
}

// Stop detiene el cron y espera al job en curso o a que ctx venza.
func (s *ExpiryScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("job de vencimiento no terminó antes del apagado")
	}
}

func (s *ExpiryScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	outs, err := s.svc.ExpireOverdue(ctx, SystemActor, time.Time{})
	if err != nil {
		s.log.Error().Err(err).Int("expired", len(outs)).Msg("job de vencimiento")
		return
	}
	s.log.Debug().Int("expired", len(outs)).Msg("job de vencimiento")
}
