package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	counter := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("loan-1")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, l.size())
}

func TestLocker_TryLock(t *testing.T) {
	l := New()

	unlock, ok := l.TryLock("period-1")
	assert.True(t, ok)

	_, ok = l.TryLock("period-1")
	assert.False(t, ok)

	other, ok := l.TryLock("period-2")
	assert.True(t, ok)
	other()

	unlock()
	again, ok := l.TryLock("period-1")
	assert.True(t, ok)
	again()
	assert.Equal(t, 0, l.size())
}
