package consumer

import (
	concurrentmap "autoscaler/util/map"
)

// InstanceCountTracker remembers the last known instance count per
// resource id independently of bindings, so an application bound after
// its metrics started flowing begins with its real count instead of
// zero. Entries are dropped on unbind via Forget.
type InstanceCountTracker struct {
	counts *concurrentmap.ConcurrentMapTrait[string, int]
}

func NewInstanceCountTracker() *InstanceCountTracker {
	return &InstanceCountTracker{
		counts: concurrentmap.NewConcurrentMapTrait[string, int](),
	}
}

func (t *InstanceCountTracker) Record(resourceId string, count int) {
	t.counts.Put(resourceId, count)
}

func (t *InstanceCountTracker) LastKnown(resourceId string) (int, bool) {
	return t.counts.Get(resourceId)
}

func (t *InstanceCountTracker) Forget(resourceId string) {
	t.counts.Del(resourceId)
}
