package queue

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestRingQueuePartialFill(t *testing.T) {
	ringQ := NewRingQueue[float64](5)
	ringQ.Push(22.8)
	ringQ.Push(66.1)
	assert.Equal(t, 2, ringQ.Len())
	vals := ringQ.GetElements()
	assert.Equal(t, 22.8, vals[0])
	assert.Equal(t, 66.1, vals[1])
}

func TestRingQueueOverflowDropsOldest(t *testing.T) {
	ringQ := NewRingQueue[int](3)
	for i := 1; i <= 5; i++ {
		ringQ.Push(i)
	}
	assert.Equal(t, 3, ringQ.Len())
	vals := ringQ.GetElements()
	assert.DeepEqual(t, []int{3, 4, 5}, vals)
}

func TestRingQueueReset(t *testing.T) {
	ringQ := NewRingQueue[int](3)
	ringQ.Push(1)
	ringQ.Push(2)
	ringQ.Reset()
	assert.Equal(t, 0, ringQ.Len())
	assert.Equal(t, 0, len(ringQ.GetElements()))
	ringQ.Push(7)
	assert.DeepEqual(t, []int{7}, ringQ.GetElements())
}
