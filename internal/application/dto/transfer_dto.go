package dto

import "github.com/shopspring/decimal"

// TransferRequest body para POST /api/transfers (Zona Franca -> Bodega).
type TransferRequest struct {
	Product        string   `json:"product"`
	Quantity       int64    `json:"quantity"`
	Selection      string   `json:"selection,omitempty"` // oldest_first | explicit | none
	ReservationIDs []string `json:"reservation_ids,omitempty"`
}

// TransferResponse resultado del traslado.
type TransferResponse struct {
	Product        string              `json:"product"`
	Quantity       int64               `json:"quantity"`
	Ratio          decimal.Decimal     `json:"ratio"`
	ReservedToMove int64               `json:"reserved_to_move"`
	Moved          []string            `json:"moved"`
	MovedQuantity  int64               `json:"moved_quantity"`
	Warning        string              `json:"warning,omitempty"`
	Blocked        []string            `json:"blocked,omitempty"`
	Lines          []StockLineResponse `json:"lines"`
}
