package workers_test

import (
	"sync/atomic"
	"testing"

	"github.com/database-playground/account-eraser/internal/workers"
	"github.com/stretchr/testify/assert"
)

func TestWorker(t *testing.T) {
	w := workers.NewWorker()

	var ran atomic.Int32
	for range 10 {
		w.Go("count", func() {
			ran.Add(1)
		})
	}
	w.Wait()

	assert.Equal(t, int32(10), ran.Load())
}

func TestWorker_Panic(t *testing.T) {
	w := workers.NewWorker()

	var after atomic.Bool
	w.Go("panics", func() {
		panic("boom")
	})
	w.Go("survives", func() {
		after.Store(true)
	})

	assert.NotPanics(t, w.Wait)
	assert.True(t, after.Load())
}
