package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateNotifiesSubscribers(t *testing.T) {
	s := NewState(Filter{AsOf: "2025-01-24"})

	var first, second []Filter
	unsubFirst := s.Subscribe(func(f Filter) { first = append(first, f) })
	s.Subscribe(func(f Filter) { second = append(second, f) })

	s.Update(func(f Filter) Filter {
		f.Crew = "smith"
		return f
	})

	assert.Equal(t, Filter{AsOf: "2025-01-24", Crew: "smith"}, s.Get())
	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, "smith", first[0].Crew)

	unsubFirst()
	unsubFirst()
	s.Set(Filter{Tail: "N8701Q"})

	assert.Len(t, first, 1)
	assert.Len(t, second, 2)
	assert.Equal(t, Filter{Tail: "N8701Q"}, second[1])
}

func TestStateSubscriberMaySet(t *testing.T) {
	s := NewState(Filter{})
	calls := 0
	s.Subscribe(func(f Filter) {
		calls++
		if f.Airport == "khou" {
			s.Set(Filter{Airport: "KHOU"})
		}
	})

	s.Set(Filter{Airport: "khou"})

	assert.Equal(t, 2, calls)
	assert.Equal(t, "KHOU", s.Get().Airport)
}

func TestQuery(t *testing.T) {
	f := Filter{DateFrom: "2025-01-01", DateTo: "2025-01-31", AsOf: "2025-01-31", Crew: "jones", Airport: "KDEN"}
	got := f.Query()

	assert.Equal(t, "2025-01-01", got.DateFrom)
	assert.Equal(t, "2025-01-31", got.DateTo)
	assert.Equal(t, "jones", got.Crew)
	assert.Equal(t, "KDEN", got.Airport)
	assert.Zero(t, got.Limit)
}
