package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(eventID uuid.UUID) *Client {
	return &Client{
		ID:      uuid.New().String(),
		EventID: eventID,
		send:    make(chan WSMessage, 4),
	}
}

func TestBroadcastDeliversToRoomClientsOnly(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	room := uuid.New()
	other := uuid.New()

	inRoom := newTestClient(room)
	outside := newTestClient(other)
	hub.Register(inRoom)
	hub.Register(outside)

	hub.BroadcastToEvent(room, "incident_division", map[string]string{"status": "new"})

	select {
	case msg := <-inRoom.send:
		assert.Equal(t, "incident_division", msg.Event)
	default:
		t.Fatal("room client received nothing")
	}
	assert.Empty(t, outside.send)
	assert.Equal(t, 1, hub.AudienceCount(room))

	hub.Unregister(inRoom)
	assert.Equal(t, 0, hub.AudienceCount(room))
}

func TestBroadcastSkipsClientsWithFullBuffers(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	room := uuid.New()
	c := &Client{ID: "slow", EventID: room, send: make(chan WSMessage)}
	hub.Register(c)

	// Nobody reads from the channel; broadcast must not block.
	hub.BroadcastToEvent(room, "ping", nil)
}

func TestBroadcastDuringJoinAndLeave(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	room := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		c := newTestClient(room)
		c.ID = fmt.Sprintf("c-%d", i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Register(c)
			hub.Unregister(c)
		}()
		go func() {
			defer wg.Done()
			hub.BroadcastToEvent(room, "tick", nil)
		}()
	}
	wg.Wait()

	require.Equal(t, 0, hub.AudienceCount(room))
}
