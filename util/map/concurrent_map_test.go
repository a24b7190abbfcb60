package concurrent_map

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestConcurrentMapTrait(t *testing.T) {
	cp := NewConcurrentMapTrait[string, int]()
	cp.Put("aaa", 1)
	val, ok := cp.Get("aaa")
	assert.Equal(t, true, ok)
	assert.Equal(t, 1, val)
	assert.Equal(t, true, cp.Contains("aaa"))

	cp.Del("aaa")
	assert.Equal(t, false, cp.Contains("aaa"))
}

func TestConcurrentMapSnapshotIsCopy(t *testing.T) {
	cp := NewConcurrentMapTrait[string, int]()
	cp.Put("a", 1)
	snap := cp.SnapShot()
	cp.Put("b", 2)
	assert.Equal(t, 1, len(snap))
}
