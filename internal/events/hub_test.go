package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubSubscribeUnsubscribe(t *testing.T) {
	h := NewHub(4)

	ch, unsubscribe := h.Subscribe()
	require.NotNil(t, ch)
	assert.Equal(t, 1, h.Len())

	unsubscribe()
	assert.Equal(t, 0, h.Len())

	_, open := <-ch
	assert.False(t, open)

	// second call is a no-op
	assert.NotPanics(t, unsubscribe)
}

func TestHubPublish(t *testing.T) {
	h := NewHub(4)
	ch1, unsub1 := h.Subscribe()
	ch2, unsub2 := h.Subscribe()
	defer unsub1()
	defer unsub2()

	h.Publish(Event{Type: BatchImported, BatchID: "b1", Imported: 3})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			assert.Equal(t, BatchImported, e.Type)
			assert.Equal(t, "b1", e.BatchID)
			assert.Equal(t, 3, e.Imported)
			assert.False(t, e.At.IsZero())
		case <-time.After(100 * time.Millisecond):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestHubPublishNonBlocking(t *testing.T) {
	h := NewHub(1)
	ch, unsubscribe := h.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			h.Publish(Event{Type: BatchDeleted})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, 1)
}

func TestHubConcurrentAccess(t *testing.T) {
	h := NewHub(8)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, unsubscribe := h.Subscribe()
			unsubscribe()
		}()
		go func() {
			defer wg.Done()
			h.Publish(Event{Type: BatchImported})
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.Len())
}
