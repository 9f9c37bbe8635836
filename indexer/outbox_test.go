package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

func sequences(events []models.Event) []uint64 {
	out := make([]uint64, 0, len(events))
	for _, event := range events {
		out = append(out, event.Sequence)
	}
	return out
}

func TestOutbox(t *testing.T) {
	outbox := NewOutbox()
	assert.Empty(t, outbox.drain())

	outbox.Publish(models.Event{Sequence: 1, Kind: models.EventNGORegistered})
	outbox.Publish(models.Event{Sequence: 2, Kind: models.EventNGOChallenged})
	assert.Equal(t, 2, outbox.Len())

	drained := outbox.drain()
	assert.Equal(t, []uint64{1, 2}, sequences(drained))
	assert.Equal(t, 0, outbox.Len())

	// published while the drained batch was in flight
	outbox.Publish(models.Event{Sequence: 3, Kind: models.EventDonationMade})
	outbox.requeue(drained[1:])
	outbox.requeue(nil)

	assert.Equal(t, []uint64{2, 3}, sequences(outbox.drain()))
}
