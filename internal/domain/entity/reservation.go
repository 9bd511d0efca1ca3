package entity

import "time"

// ReservationStatus estado de una reserva.
type ReservationStatus string

const (
	ReservationPending    ReservationStatus = "Pending"
	ReservationValidated  ReservationStatus = "Validated"
	ReservationRejected   ReservationStatus = "Rejected"
	ReservationDispatched ReservationStatus = "Dispatched"
)

// Terminal indica si el estado ya no cuenta en separadas.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationRejected || s == ReservationDispatched
}

// Active indica si la cantidad de la reserva está contada en separadas.
func (s ReservationStatus) Active() bool {
	return s == ReservationPending || s == ReservationValidated
}

// Valid indica si el estado es uno de los conocidos.
func (s ReservationStatus) Valid() bool {
	return s.Active() || s.Terminal()
}

// transiciones permitidas: Pending -> Validated -> Dispatched, Pending|Validated -> Rejected,
// Validated -> Pending (edición que exige revalidar).
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:   {ReservationValidated, ReservationRejected, ReservationPending},
	ReservationValidated: {ReservationDispatched, ReservationRejected, ReservationPending},
}

// CanTransition indica si from -> to es una transición legal.
func CanTransition(from, to ReservationStatus) bool {
	for _, s := range reservationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// RejectionReasonExpired motivo usado al vencer reservas.
const RejectionReasonExpired = "vencida"

// Reservation separación provisional de stock contra una cotización.
// Mientras está Pending o Validated, Quantity cuenta en el conteo de separadas
// de (Product, Source, SourceID).
type Reservation struct {
	ID              string
	Customer        string
	Product         string
	Quantity        int64
	Source          Source
	SourceID        string // ID del contenedor, o la etiqueta de ubicación
	QuoteNumber     string
	Advisor         string
	Status          ReservationStatus
	ExpiresAt       *time.Time
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	Deleted         bool // solo en instantáneas de borrado para el espejo
}

// Clone copia la reserva (incluida la fecha de vencimiento).
func (r *Reservation) Clone() *Reservation {
	cp := *r
	if r.ExpiresAt != nil {
		at := *r.ExpiresAt
		cp.ExpiresAt = &at
	}
	return &cp
}

// Expired indica si la reserva tiene vencimiento anterior a now.
func (r *Reservation) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}
