package scaling

import (
	"context"
	"time"

	"autoscaler/object"
	"autoscaler/pkg/applications"
	"autoscaler/pkg/klog"
	"autoscaler/pkg/manager"
)

// EngineClient sends scaling orders to the external scaling engine.
type EngineClient interface {
	Scale(resourceId string, bindingContext map[string]string, newInstances int) (int, error)
}

// ScalingLogProducer publishes scaling logs on the bus.
type ScalingLogProducer interface {
	ProduceScalingLog(scalingLog *object.ScalingLog)
}

/*
Scaler is the periodic loop turning scaling decisions into orders. Every
interval it walks the registered apps, advances their interval counter
and, for apps whose counter reached the scaling interval multiplier,
runs the checker and applies the resulting action.

The app mutex is held across the engine call so that lastScalingTime is
only advanced for confirmed orders. The engine client carries a request
timeout, bounding the hold.
*/
type Scaler struct {
	manager  *manager.ScalableAppManager
	engine   EngineClient
	producer ScalingLogProducer
	checker  *Checker
	interval time.Duration
	stopCh   chan struct{}
}

func NewScaler(appManager *manager.ScalableAppManager, engine EngineClient,
	producer ScalingLogProducer, checker *Checker, interval time.Duration) *Scaler {
	return &Scaler{
		manager:  appManager,
		engine:   engine,
		producer: producer,
		checker:  checker,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scaler) Run() {
	go func() {
		for {
			select {
			case <-s.stopCh:
				return
			default:
			}
			s.CheckApps()
			time.Sleep(s.interval)
		}
	}()
}

func (s *Scaler) Stop() {
	close(s.stopCh)
}

// CheckApps runs one scaler tick over a snapshot of the registry.
func (s *Scaler) CheckApps() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()
	for _, app := range s.manager.GetFlatCopyOfApps() {
		if err := app.Acquire(ctx); err != nil {
			klog.Warnf("Scaler : skipping %s : %s\n", app.IdentifierString(), err.Error())
			continue
		}
		s.checkApp(app)
		app.Release()
	}
}

// checkApp advances the interval counter and evaluates the app once the
// counter reaches the scaling interval multiplier. The mutex is held.
func (s *Scaler) checkApp(app *applications.ScalableApp) {
	state := app.CurrentIntervalState() + 1
	if state < app.ScalingIntervalMultiplier() {
		app.SetCurrentIntervalState(state)
		return
	}
	app.SetCurrentIntervalState(0)

	action := s.checker.ChooseScalingAction(app)
	if !action.NeedsScaling {
		klog.Debugf("Scaler : no scaling needed for %s : %s\n", app.IdentifierString(), action.Description)
		return
	}
	s.applyAction(app, action)
}

func (s *Scaler) applyAction(app *applications.ScalableApp, action *ScalingAction) {
	binding := app.Binding()
	status, err := s.engine.Scale(binding.ResourceId, binding.Context, action.NewInstances)
	if err != nil {
		klog.Errorf("Scaler : error scaling %s : %s\n", app.IdentifierString(), err.Error())
		return
	}
	if status < 200 || status > 299 {
		klog.Errorf("Scaler : engine answered %d for %s, order not confirmed\n", status, app.IdentifierString())
		return
	}

	now := object.NowMillis()
	app.SetLastScalingTime(now)
	app.SetCurrentInstanceCount(action.NewInstances)
	s.producer.ProduceScalingLog(action.ScalingLog(now))
	if err := s.manager.UpdateInStore(app); err != nil {
		klog.Errorf("Scaler : error updating %s in store : %s\n", app.IdentifierString(), err.Error())
	}
	klog.Infof("Scaler : scaled %s from %d to %d instances (%s)\n",
		app.IdentifierString(), action.OldInstances, action.NewInstances, action.Reason)
}
