package provider

import "sync"

// Registry holds the configured providers. Catalogs keep their registration
// order; the resolver tries them in that priority order.
type Registry struct {
	mu         sync.RWMutex
	catalogs   []Catalog
	lyrics     LyricsSource
	recognizer Recognizer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterCatalog appends a catalog provider. Registration order is
// priority order.
func (r *Registry) RegisterCatalog(c Catalog) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalogs = append(r.catalogs, c)
}

// Catalogs returns the catalogs in priority order.
func (r *Registry) Catalogs() []Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Catalog, len(r.catalogs))
	copy(out, r.catalogs)
	return out
}

// SetLyrics configures the lyrics provider. May be nil.
func (r *Registry) SetLyrics(l LyricsSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lyrics = l
}

// Lyrics returns the configured lyrics provider, or nil.
func (r *Registry) Lyrics() LyricsSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lyrics
}

// SetRecognizer configures the fingerprint provider. May be nil.
func (r *Registry) SetRecognizer(rec Recognizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recognizer = rec
}

// Recognizer returns the configured fingerprint provider, or nil.
func (r *Registry) Recognizer() Recognizer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recognizer
}
