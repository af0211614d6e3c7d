package envcors

import (
	"slices"
	"sync"
)

var (
	providersMu sync.RWMutex
	providers   = make(map[string]CorsFactory)
)

func init() {
	Register(new(Factory))
}

// Register makes a CORS provider available under the identifier f.ID().
// If Register is called twice with the same identifier or if f is nil,
// it panics.
func Register(f CorsFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	if f == nil {
		panic("envcors: Register factory is nil")
	}
	id := f.ID()
	if _, dup := providers[id]; dup {
		panic("envcors: Register called twice for provider " + id)
	}
	providers[id] = f
}

// Lookup returns the CORS provider registered under id, if any.
func Lookup(id string) (CorsFactory, bool) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	f, found := providers[id]
	return f, found
}

// Providers returns a sorted list of the identifiers of the registered
// CORS providers.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	ids := make([]string, 0, len(providers))
	for id := range providers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
