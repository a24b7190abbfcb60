package manager

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"autoscaler/object"
	"autoscaler/pkg/applications"
	"autoscaler/pkg/config"
	"autoscaler/pkg/klog"
)

// BlueprintStore is the persistence contract the manager needs.
type BlueprintStore interface {
	Save(bp *object.AppBlueprint) error
	Delete(bindingId string) error
	FindAll() ([]*object.AppBlueprint, error)
}

// BindingEventProducer publishes binding lifecycle events on the bus.
type BindingEventProducer interface {
	ProduceBindingEvent(action string, binding *object.Binding)
}

/*
ScalableAppManager is the registry of bound applications. It keeps the
in-memory list, the persistent store and the bus notifications in step.

The list itself is guarded by an RWMutex; the state of each application
stays under its own mutex. Snapshots returned by GetFlatCopyOfApps copy
the list only, callers must acquire each app before inspecting it.
*/
type ScalableAppManager struct {
	mtx  sync.RWMutex
	apps []*applications.ScalableApp

	store    BlueprintStore
	producer BindingEventProducer

	maxMetricListSize int
	maxMetricAge      int64
	defaults          config.AppDefaults
}

func NewScalableAppManager(store BlueprintStore, producer BindingEventProducer,
	scaler config.ScalerConfig, defaults config.AppDefaults) *ScalableAppManager {
	return &ScalableAppManager{
		store:             store,
		producer:          producer,
		maxMetricListSize: scaler.MaxMetricListSize,
		maxMetricAge:      scaler.MaxMetricAgeMillis,
		defaults:          defaults,
	}
}

// NewApp returns an unregistered ScalableApp with default parameters for
// the given binding.
func (m *ScalableAppManager) NewApp(binding *object.Binding) *applications.ScalableApp {
	now := object.NowMillis()
	if binding.CreationTime > now {
		now = binding.CreationTime
	}
	bp := &object.AppBlueprint{
		Binding:                   binding,
		CpuUpperLimit:             m.defaults.CpuUpperLimit,
		CpuLowerLimit:             m.defaults.CpuLowerLimit,
		CpuThresholdPolicy:        m.defaults.CpuThresholdPolicy,
		RamUpperLimit:             m.defaults.RamUpperLimit,
		RamLowerLimit:             m.defaults.RamLowerLimit,
		RamThresholdPolicy:        m.defaults.RamThresholdPolicy,
		RequestUpperLimit:         m.defaults.RequestUpperLimit,
		RequestLowerLimit:         m.defaults.RequestLowerLimit,
		RequestThresholdPolicy:    m.defaults.RequestThresholdPolicy,
		QuotientScalingEnabled:    m.defaults.QuotientScalingEnabled,
		LatencyUpperLimit:         m.defaults.LatencyUpperLimit,
		LatencyLowerLimit:         m.defaults.LatencyLowerLimit,
		LatencyThresholdPolicy:    m.defaults.LatencyThresholdPolicy,
		MinQuotient:               m.defaults.MinQuotient,
		MinInstances:              m.defaults.MinInstances,
		MaxInstances:              m.defaults.MaxInstances,
		CooldownTime:              m.defaults.CooldownTime,
		LearningTimeMultiplier:    m.defaults.LearningTimeMultiplier,
		ScalingIntervalMultiplier: m.defaults.ScalingIntervalMultiplier,
		CurrentIntervalState:      0,
		LastScalingTime:           now,
		LearningStartTime:         now,
	}
	return applications.NewApp(bp, m.maxMetricListSize, m.maxMetricAge)
}

// Add registers an app if its binding id is not taken yet. Apps that were
// not loaded from the store are persisted and announced with CREATING;
// loaded ones only get a LOADING event.
func (m *ScalableAppManager) Add(app *applications.ScalableApp, loadedFromStore bool) bool {
	m.mtx.Lock()
	if m.indexOf(app.Binding().Id) >= 0 {
		m.mtx.Unlock()
		return false
	}
	m.apps = append(m.apps, app)
	m.mtx.Unlock()

	action := object.BindingLoading
	klog.Debugf("Manager : added app %s\n", app.IdentifierString())
	if !loadedFromStore {
		if err := m.store.Save(app.Blueprint()); err != nil {
			klog.Errorf("Manager : error saving blueprint of %s : %s\n", app.IdentifierString(), err.Error())
		}
		action = object.BindingCreating
		klog.Infof("Manager : bound app %s\n", app.IdentifierString())
	}
	m.producer.ProduceBindingEvent(action, app.Binding())
	return true
}

// Remove unregisters an app, deletes its blueprint from the store and
// publishes a DELETING event.
func (m *ScalableAppManager) Remove(app *applications.ScalableApp) bool {
	if app == nil {
		return false
	}
	return m.RemoveById(app.Binding().Id)
}

func (m *ScalableAppManager) RemoveById(bindingId string) bool {
	m.mtx.Lock()
	i := m.indexOf(bindingId)
	if i < 0 {
		m.mtx.Unlock()
		return false
	}
	app := m.apps[i]
	m.apps = append(m.apps[:i], m.apps[i+1:]...)
	m.mtx.Unlock()

	if err := m.store.Delete(bindingId); err != nil {
		klog.Errorf("Manager : error deleting blueprint of %s : %s\n", app.IdentifierString(), err.Error())
	}
	m.producer.ProduceBindingEvent(object.BindingDeleting, app.Binding())
	klog.Infof("Manager : removed app %s\n", app.IdentifierString())
	return true
}

// indexOf must be called with the list mutex held.
func (m *ScalableAppManager) indexOf(bindingId string) int {
	for i, app := range m.apps {
		if app.Binding().Id == bindingId {
			return i
		}
	}
	return -1
}

func (m *ScalableAppManager) Get(bindingId string) *applications.ScalableApp {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	if i := m.indexOf(bindingId); i >= 0 {
		return m.apps[i]
	}
	return nil
}

func (m *ScalableAppManager) GetByResourceId(resourceId string) *applications.ScalableApp {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	for _, app := range m.apps {
		if app.Binding().ResourceId == resourceId {
			return app
		}
	}
	return nil
}

func (m *ScalableAppManager) Contains(bindingId string) bool {
	return m.Get(bindingId) != nil
}

func (m *ScalableAppManager) ContainsResourceId(resourceId string) bool {
	return m.GetByResourceId(resourceId) != nil
}

func (m *ScalableAppManager) Size() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return len(m.apps)
}

// GetFlatCopyOfApps returns a snapshot of the registered list. Per-app
// state is not copied; acquire each app before reading it.
func (m *ScalableAppManager) GetFlatCopyOfApps() []*applications.ScalableApp {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	apps := make([]*applications.ScalableApp, len(m.apps))
	copy(apps, m.apps)
	return apps
}

// GetListOfBindings collects the bindings of all registered apps. Apps
// whose mutex cannot be acquired before ctx is done are skipped.
func (m *ScalableAppManager) GetListOfBindings(ctx context.Context) []*object.Binding {
	bindings := make([]*object.Binding, 0, m.Size())
	for _, app := range m.GetFlatCopyOfApps() {
		if err := app.Acquire(ctx); err != nil {
			continue
		}
		bindings = append(bindings, app.Binding())
		app.Release()
	}
	return bindings
}

// GetListOfIdentifierStrings collects the log identifiers of all
// registered apps, skipping apps whose mutex cannot be acquired.
func (m *ScalableAppManager) GetListOfIdentifierStrings(ctx context.Context) []string {
	identifiers := make([]string, 0, m.Size())
	for _, app := range m.GetFlatCopyOfApps() {
		if err := app.Acquire(ctx); err != nil {
			continue
		}
		identifiers = append(identifiers, app.IdentifierString())
		app.Release()
	}
	return identifiers
}

// UpdateInStore persists the current blueprint of an app. The caller must
// hold the app's mutex.
func (m *ScalableAppManager) UpdateInStore(app *applications.ScalableApp) error {
	if err := m.store.Save(app.Blueprint()); err != nil {
		return errors.Wrap(err, "update blueprint")
	}
	return nil
}

// LoadFromStore reads all persisted blueprints and registers the valid
// ones. Invalid blueprints are logged and skipped, they never abort the
// startup.
func (m *ScalableAppManager) LoadFromStore() error {
	klog.Infof("Manager : importing from store ...\n")
	blueprints, err := m.store.FindAll()
	if err != nil {
		return errors.Wrap(err, "load blueprints")
	}
	for _, bp := range blueprints {
		if bp == nil {
			klog.Errorf("Manager : skipping an undecodable blueprint from the store\n")
			continue
		}
		if err := applications.Validate(bp); err != nil {
			identifier := "<no binding>"
			if bp.Binding != nil {
				identifier = bp.Binding.IdentifierString()
			}
			klog.Errorf("Manager : found an invalid blueprint while importing %s : %s\n",
				identifier, err.Error())
			continue
		}
		app := applications.NewApp(bp, m.maxMetricListSize, m.maxMetricAge)
		if m.Add(app, true) {
			klog.Infof("Manager : imported app from store: %s\n", app.IdentifierString())
		} else {
			klog.Debugf("Manager : found an existing binding with the same id while importing %s\n",
				app.IdentifierString())
		}
	}
	return nil
}
