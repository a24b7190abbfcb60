package etcdstore

import (
	"encoding/json"

	"github.com/pkg/errors"

	"autoscaler/object"
)

const bindingPrefix = "/autoscaler/bindings/"

// BlueprintStore persists application blueprints keyed by binding id.
type BlueprintStore struct {
	store *Store
}

func NewBlueprintStore(store *Store) *BlueprintStore {
	return &BlueprintStore{store: store}
}

func bindingKey(bindingId string) string {
	return bindingPrefix + bindingId
}

func (b *BlueprintStore) Save(bp *object.AppBlueprint) error {
	data, err := json.Marshal(bp)
	if err != nil {
		return errors.Wrap(err, "marshal blueprint")
	}
	if err := b.store.Put(bindingKey(bp.Binding.Id), data); err != nil {
		return errors.Wrap(err, "save blueprint")
	}
	return nil
}

func (b *BlueprintStore) Delete(bindingId string) error {
	if err := b.store.Del(bindingKey(bindingId)); err != nil {
		return errors.Wrap(err, "delete blueprint")
	}
	return nil
}

// FindAll returns every stored blueprint. Entries that fail to decode are
// returned as nil so the caller can log and skip them.
func (b *BlueprintStore) FindAll() ([]*object.AppBlueprint, error) {
	values, err := b.store.PrefixGet(bindingPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "list blueprints")
	}
	blueprints := make([]*object.AppBlueprint, 0, len(values))
	for _, value := range values {
		bp := &object.AppBlueprint{}
		if err := json.Unmarshal(value, bp); err != nil {
			blueprints = append(blueprints, nil)
			continue
		}
		blueprints = append(blueprints, bp)
	}
	return blueprints, nil
}
