package loadtest

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
)

// Rating bands a generated update falls into.
var bands = []struct{ min, span float64 }{
	{3, 4},  // average
	{7, 2},  // strong
	{0, 3},  // weak
	{9, 1},  // exceptional
	{0, 10}, // anything
}

// varied returns a rating on the half-point grid, drawn from a random band.
func varied(r *rand.Rand) float64 {
	b := bands[r.IntN(len(bands))]
	v := b.min + r.Float64()*b.span
	return math.Min(category.MaxScore, math.Round(v*2)/2)
}

// Generate builds n rating updates. Roughly dupRate of them reuse the event id
// of an earlier update so the server's dedupe path is exercised.
func Generate(n int, dupRate float64, r *rand.Rand) []Event {
	if n <= 0 {
		return []Event{}
	}
	cats := category.All()
	events := make([]Event, n)
	for i := range events {
		if i > 0 && r.Float64() < dupRate {
			events[i] = events[r.IntN(i)]
			continue
		}
		events[i] = Event{
			EventID:  uuid.NewString(),
			Category: string(cats[r.IntN(len(cats))]),
			Score:    varied(r),
		}
	}
	return events
}
