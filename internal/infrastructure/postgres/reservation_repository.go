package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo espejo de reservations. Borrar es marcar deleted = true.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, customer, product, quantity, source, source_id, quote_number, advisor,
	status, expires_at, rejection_reason, created_at, updated_at, version, deleted`

// Upsert inserta o actualiza la reserva si la versión es más nueva.
func (r *ReservationRepo) Upsert(ctx context.Context, res *entity.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id)
		DO UPDATE SET customer = EXCLUDED.customer, product = EXCLUDED.product,
			quantity = EXCLUDED.quantity, source = EXCLUDED.source, source_id = EXCLUDED.source_id,
			advisor = EXCLUDED.advisor, status = EXCLUDED.status, expires_at = EXCLUDED.expires_at,
			rejection_reason = EXCLUDED.rejection_reason, updated_at = EXCLUDED.updated_at,
			version = EXCLUDED.version, deleted = EXCLUDED.deleted
		WHERE reservations.version < EXCLUDED.version`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.Customer, res.Product, res.Quantity, string(res.Source), res.SourceID,
		res.QuoteNumber, nullString(res.Advisor), string(res.Status), res.ExpiresAt,
		nullString(res.RejectionReason), res.CreatedAt, res.UpdatedAt, res.Version, res.Deleted,
	)
	if err != nil {
		return fmt.Errorf("upsert reservation: %w", err)
	}
	return nil
}

// ListLive devuelve las reservas no eliminadas, más antiguas primero.
func (r *ReservationRepo) ListLive(ctx context.Context) ([]*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations WHERE NOT deleted ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		var (
			res                    entity.Reservation
			source, status         string
			advisor, rejectionNote *string
		)
		if err := rows.Scan(&res.ID, &res.Customer, &res.Product, &res.Quantity, &source, &res.SourceID,
			&res.QuoteNumber, &advisor, &status, &res.ExpiresAt, &rejectionNote,
			&res.CreatedAt, &res.UpdatedAt, &res.Version, &res.Deleted); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		res.Source = entity.Source(source)
		res.Status = entity.ReservationStatus(status)
		res.Advisor = fromNull(advisor)
		res.RejectionReason = fromNull(rejectionNote)
		list = append(list, &res)
	}
	return list, rows.Err()
}
