package sla

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEscalator struct {
	calls atomic.Int32
	n     int
	err   error
}

func (f *fakeEscalator) SweepOverdue(context.Context) (int, error) {
	f.calls.Add(1)
	return f.n, f.err
}

func TestNewSweeper(t *testing.T) {
	t.Run("default schedule", func(t *testing.T) {
		s, err := NewSweeper(&fakeEscalator{}, "", nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultSchedule, s.schedule)
	})

	t.Run("rejects a malformed schedule", func(t *testing.T) {
		_, err := NewSweeper(&fakeEscalator{}, "every now and then", nil)
		assert.Error(t, err)
	})
}

func TestRunOnce(t *testing.T) {
	t.Run("reports escalations", func(t *testing.T) {
		esc := &fakeEscalator{n: 3}
		s, err := NewSweeper(esc, "@every 1h", nil)
		require.NoError(t, err)
		assert.Equal(t, 3, s.RunOnce(context.Background()))
		assert.EqualValues(t, 1, esc.calls.Load())
	})

	t.Run("partial failure still reports progress", func(t *testing.T) {
		esc := &fakeEscalator{n: 1, err: errors.New("db down")}
		s, err := NewSweeper(esc, "@every 1h", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, s.RunOnce(context.Background()))
	})
}

func TestStartStop(t *testing.T) {
	s, err := NewSweeper(&fakeEscalator{}, "@every 1h", nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.Error(t, s.Start())
	s.Stop()
	s.Stop()
}
