package inventory

import (
	"sort"
	"sync"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// keyLocks un mutex por clave (StockLine o contenedor). Las operaciones que tocan
// varias claves las toman en orden lexicográfico para evitar interbloqueos.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock adquiere las claves (sin duplicados, en orden global) y devuelve la función que las libera.
func (k *keyLocks) Lock(keys ...string) func() {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		uniq = append(uniq, key)
	}
	sort.Strings(uniq)

	held := make([]*sync.Mutex, 0, len(uniq))
	for _, key := range uniq {
		m := k.get(key)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func stockKey(product string, loc entity.LocationKind) string {
	return "stock/" + string(loc) + "/" + product
}

func containerKey(id string) string {
	return "container/" + id
}

// sourceKey clave que serializa la reserva según su origen.
func sourceKey(source entity.Source, sourceID, product string) string {
	if loc, ok := source.Location(); ok {
		return stockKey(product, loc)
	}
	return containerKey(sourceID)
}
