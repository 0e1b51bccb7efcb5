package xl30

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsPublishesSuccessAndFailure(t *testing.T) {
	errPayload := []byte{7, 0, 0, 0}
	s, _ := newHandshakedSession(t,
		encodeFrame(opGetContrast, 0, floatPayload(10)),
		encodeFrame(opGetContrast, statusErrorBitForTest, errPayload),
	)

	events := s.Events()

	_, err := s.GetContrast()
	require.NoError(t, err)

	select {
	case e := <-events:
		ev := e.(OperationEvent)
		assert.Equal(t, "get_contrast", ev.Op)
		assert.True(t, ev.Success)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for success event")
	}

	_, err = s.GetContrast()
	require.Error(t, err)

	select {
	case e := <-events:
		ev := e.(OperationEvent)
		assert.Equal(t, "get_contrast", ev.Op)
		assert.False(t, ev.Success)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for failure event")
	}
}
