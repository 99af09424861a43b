package shutdown

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceStopsInOrderAndJoinsErrors(t *testing.T) {
	var order []string
	errA := errors.New("a failed")

	s := Sequence(
		StopFunc(func(context.Context) error { order = append(order, "server"); return nil }),
		nil,
		StopFunc(func(context.Context) error { order = append(order, "dispatcher"); return errA }),
		StopFunc(func(context.Context) error { order = append(order, "store"); return nil }),
	)

	err := s.Shutdown(context.Background())
	assert.ErrorIs(t, err, errA)
	assert.Equal(t, []string{"server", "dispatcher", "store"}, order)
}
