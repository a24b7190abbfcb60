package consumer

import (
	"context"
	"time"

	"autoscaler/pkg/applications"
	"autoscaler/pkg/manager"
	"autoscaler/pkg/messaging"
)

// acquireTimeout bounds how long a consumer waits for an app mutex
// before dropping the message.
const acquireTimeout = 5 * time.Second

// subscriber is the part of messaging.Subscriber the consumers need.
type subscriber interface {
	Subscribe(exchangeName string, handler messaging.HandleFunc, stopCh <-chan struct{}) error
}

// consumerBase carries what every metric consumer shares: the registry
// to resolve apps, the bus subscription and the stop signal.
type consumerBase struct {
	manager *manager.ScalableAppManager
	sub     subscriber
	topic   string
	stopCh  chan struct{}
}

func newConsumerBase(appManager *manager.ScalableAppManager, sub subscriber, topic string) consumerBase {
	return consumerBase{
		manager: appManager,
		sub:     sub,
		topic:   topic,
		stopCh:  make(chan struct{}),
	}
}

// start subscribes the given handler on the consumer's topic.
func (c *consumerBase) start(handler messaging.HandleFunc) error {
	return c.sub.Subscribe(c.topic, handler, c.stopCh)
}

// Stop wakes the underlying subscription and ends the consumer.
func (c *consumerBase) Stop() {
	close(c.stopCh)
}

// withApp resolves the app for the given resource id and runs f with the
// app's mutex held. Unknown apps are dropped silently; an expired acquire
// abandons the message without touching the app.
func (c *consumerBase) withApp(resourceId string, f func(app *applications.ScalableApp)) {
	app := c.manager.GetByResourceId(resourceId)
	if app == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), acquireTimeout)
	defer cancel()
	if err := app.Acquire(ctx); err != nil {
		return
	}
	defer app.Release()
	f(app)
}
