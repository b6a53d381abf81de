package dedupe

// Option configures the in-memory deduper.
type Option func(*memoryDeduper)

// WithMaxSize sets how many ids are remembered. Values below 1 keep the default.
func WithMaxSize(size int) Option {
	return func(d *memoryDeduper) {
		if size > 0 {
			d.maxSize = size
		}
	}
}
