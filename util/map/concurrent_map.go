package concurrent_map

import (
	"sync"
)

type ConcurrentMapTrait[KEY comparable, VALUE any] struct {
	innerMap map[KEY]VALUE
	mtx      sync.RWMutex
}

func NewConcurrentMapTrait[KEY comparable, VALUE any]() *ConcurrentMapTrait[KEY, VALUE] {
	return &ConcurrentMapTrait[KEY, VALUE]{
		innerMap: make(map[KEY]VALUE),
	}
}

func (c *ConcurrentMapTrait[KEY, VALUE]) Get(key KEY) (VALUE, bool) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	val, ok := c.innerMap[key]
	return val, ok
}

func (c *ConcurrentMapTrait[KEY, VALUE]) Put(key KEY, val VALUE) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.innerMap[key] = val
}

func (c *ConcurrentMapTrait[KEY, VALUE]) Del(key KEY) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	delete(c.innerMap, key)
}

func (c *ConcurrentMapTrait[KEY, VALUE]) Contains(key KEY) bool {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	_, ok := c.innerMap[key]
	return ok
}

func (c *ConcurrentMapTrait[KEY, VALUE]) SnapShot() map[KEY]VALUE {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	m2 := make(map[KEY]VALUE, len(c.innerMap))
	for k, v := range c.innerMap {
		m2[k] = v
	}
	return m2
}
