package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorderKeepsLatestEvents(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	rec := NewRecorder(bus, 3)

	for i := 0; i < 5; i++ {
		bus.Publish(NewResponse("s", Response{Status: int64(200 + i)}))
	}
	bus.Publish(NewConsole("s", Console{Type: "info", Text: "hello"}))

	assert.Eventually(t, func() bool {
		return len(rec.Recent(nil, 0)) == 3
	}, time.Second, 5*time.Millisecond)
	rec.Close()

	all := rec.Recent(nil, 0)
	assert.Equal(t, KindResponse, all[0].Kind)
	assert.Equal(t, int64(203), all[0].Response.Status)
	assert.Equal(t, KindConsole, all[2].Kind)

	responses := rec.Recent(OfKind(KindResponse), 1)
	if assert.Len(t, responses, 1) {
		assert.Equal(t, int64(204), responses[0].Response.Status)
	}
}
