package types

// DefaultMap is a map that materializes a default value for keys read
// before being written. The block processor uses it to tally projected
// events per kind.
//
//	counts := NewDefaultMap[string](func() int { return 0 })
//	counts.Update("ctype.CTypeCreated", func(n int) int { return n + 1 })
type DefaultMap[K comparable, V any] struct {
	data        map[K]V
	defaultFunc func() V
}

// NewDefaultMap returns an empty DefaultMap using defaultFunc for missing keys.
func NewDefaultMap[K comparable, V any](defaultFunc func() V) DefaultMap[K, V] {
	return DefaultMap[K, V]{
		data:        make(map[K]V),
		defaultFunc: defaultFunc,
	}
}

// Get returns the value for key, storing and returning a default when absent.
func (d *DefaultMap[K, V]) Get(key K) V {
	val, ok := d.data[key]
	if ok {
		return val
	}

	val = d.defaultFunc()
	d.data[key] = val
	return val
}

// Set assigns val to key.
func (d *DefaultMap[K, V]) Set(key K, val V) {
	d.data[key] = val
}

// Update replaces the value of key with f applied to its current (or default) value.
func (d *DefaultMap[K, V]) Update(key K, f func(V) V) {
	d.data[key] = f(d.Get(key))
}

// ToMap exposes the underlying map.
func (d *DefaultMap[K, V]) ToMap() map[K]V {
	return d.data
}
