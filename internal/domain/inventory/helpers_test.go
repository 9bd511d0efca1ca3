package inventory_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/inventory"
)

var baseTime = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

// testClock reloj que avanza un segundo en cada lectura, para que CreatedAt ordene las reservas.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestEngine(t *testing.T) *inventory.Engine {
	t.Helper()
	clock := &testClock{now: baseTime}
	var mu sync.Mutex
	seq := 0
	return inventory.NewEngine(
		inventory.WithClock(clock.Now),
		inventory.WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("R%03d", seq)
		}),
	)
}

func seedStock(t *testing.T, e *inventory.Engine, product string, loc entity.LocationKind, total int64) {
	t.Helper()
	_, err := e.Ledger.AddTotal(product, loc, total)
	require.NoError(t, err)
}

func reserve(t *testing.T, e *inventory.Engine, quote, product string, source entity.Source, sourceID string, qty int64) *entity.Reservation {
	t.Helper()
	out, err := e.Reservations.Create(inventory.CreateRequest{
		Customer:    "Constructora Andina",
		Product:     product,
		Quantity:    qty,
		Source:      source,
		SourceID:    sourceID,
		QuoteNumber: quote,
		Advisor:     "asesor-1",
	})
	require.NoError(t, err)
	return out.Reservation
}

func line(t *testing.T, e *inventory.Engine, product string, loc entity.LocationKind) entity.StockLine {
	t.Helper()
	s, err := e.Ledger.Line(product, loc)
	require.NoError(t, err)
	return s
}
