package dto

import (
	"time"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// CreateReservationRequest body para POST /api/reservations. Advisor vacío = usuario del token.
type CreateReservationRequest struct {
	Customer    string     `json:"customer"`
	Product     string     `json:"product"`
	Quantity    int64      `json:"quantity"`
	Source      string     `json:"source"`
	SourceID    string     `json:"source_id,omitempty"`
	QuoteNumber string     `json:"quote_number"`
	Advisor     string     `json:"advisor,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// EditReservationRequest body para PUT /api/reservations/:id. Campos nulos no cambian.
type EditReservationRequest struct {
	Product         *string    `json:"product,omitempty"`
	Quantity        *int64     `json:"quantity,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	ClearExpiration bool       `json:"clear_expiration,omitempty"`
}

// RejectReservationRequest body para POST /api/reservations/:id/reject.
type RejectReservationRequest struct {
	Reason string `json:"reason"`
}

// ExpireReservationsRequest body opcional para POST /api/reservations/expire.
type ExpireReservationsRequest struct {
	Now *time.Time `json:"now,omitempty"`
}

// ReservationResponse salida de una reserva.
type ReservationResponse struct {
	ID              string     `json:"id"`
	Customer        string     `json:"customer"`
	Product         string     `json:"product"`
	Quantity        int64      `json:"quantity"`
	Source          string     `json:"source"`
	SourceID        string     `json:"source_id"`
	QuoteNumber     string     `json:"quote_number"`
	Advisor         string     `json:"advisor,omitempty"`
	Status          string     `json:"status"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Deleted         bool       `json:"deleted,omitempty"`
}

// FromReservation convierte una reserva.
func FromReservation(r *entity.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		Customer:        r.Customer,
		Product:         r.Product,
		Quantity:        r.Quantity,
		Source:          string(r.Source),
		SourceID:        r.SourceID,
		QuoteNumber:     r.QuoteNumber,
		Advisor:         r.Advisor,
		Status:          string(r.Status),
		ExpiresAt:       r.ExpiresAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Deleted:         r.Deleted,
	}
}

// FromReservations convierte varias reservas.
func FromReservations(list []*entity.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, FromReservation(r))
	}
	return out
}

// ReservationOutcomeResponse reserva tras la operación y las líneas que tocó.
type ReservationOutcomeResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Lines       []StockLineResponse `json:"lines"`
}
