package events

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcortesgranados/refacil-ledger/pkg/models"
)

func testEvent() Event {
	return Event{
		Kind: KindTransactionProcessed,
		Payload: models.Transaction{
			Id:        "tx-1",
			UserId:    "u1",
			Amount:    100,
			Type:      models.DEPOSIT,
			Timestamp: time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC),
		},
		OccurredAt: time.Date(2025, 10, 17, 12, 0, 1, 0, time.UTC),
	}
}

func TestLogPublisher(t *testing.T) {
	publisher := NewLogPublisher(slog.Default())

	err := publisher.Publish(context.Background(), testEvent())
	assert.NoError(t, err)
}

func TestRecorder(t *testing.T) {
	recorder := &Recorder{}

	require.NoError(t, recorder.Publish(context.Background(), testEvent()))

	published := recorder.Events()
	require.Len(t, published, 1)
	assert.Equal(t, KindTransactionProcessed, published[0].Kind)
	assert.Equal(t, "tx-1", published[0].Payload.Id)
}

func TestRecorder_Err(t *testing.T) {
	recorder := &Recorder{Err: errors.New("sink unavailable")}

	err := recorder.Publish(context.Background(), testEvent())
	assert.Error(t, err)
	assert.Empty(t, recorder.Events())
}
