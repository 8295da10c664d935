package persist

// Persister handles I/O for one state type under a fixed basename.
type Persister[T any] struct {
	basename string
	codec    Codec
}

// NewPersister creates a persister with the given basename and codec.
func NewPersister[T any](basename string, codec Codec) *Persister[T] {
	return &Persister[T]{
		basename: basename,
		codec:    codec,
	}
}

// Basename returns the file name without the codec extension.
func (p *Persister[T]) Basename() string {
	return p.basename
}

// Save writes state to dir.
func (p *Persister[T]) Save(dir string, state *T) error {
	return SaveState(dir, p.basename, p.codec, state)
}

// Load reads the state previously saved to dir.
func (p *Persister[T]) Load(dir string) (T, error) {
	var state T

	err := LoadState(dir, p.basename, p.codec, &state)

	return state, err
}

// Remove deletes the saved state from dir.
func (p *Persister[T]) Remove(dir string) error {
	return RemoveState(dir, p.basename, p.codec)
}
