package messaging

import (
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"autoscaler/pkg/klog"
)

type HandleFunc func(d amqp.Delivery)

type redo struct {
	exchangeName string
	handler      HandleFunc
	stopCh       <-chan struct{}
}

// Subscriber consumes fanout exchanges. Every subscription runs in its
// own goroutine until its stop channel is closed. A broken connection is
// re-dialed in the background and all live subscriptions are redone.
type Subscriber struct {
	conn          *amqp.Connection
	connUrl       string
	maxRetry      int
	retryInterval time.Duration
	errCh         chan *amqp.Error
	// redoLogs records every live subscription for replay after a reconnect
	redoLogs map[int]redo
	nextSlot int
	closed   bool
	mtxState sync.Mutex
}

func NewSubscriber(config *QConfig) (*Subscriber, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", config.User, config.Password, config.Host, config.Port)
	s := &Subscriber{
		connUrl:       url,
		maxRetry:      config.MaxRetry,
		retryInterval: config.RetryInterval,
		errCh:         make(chan *amqp.Error),
		redoLogs:      make(map[int]redo),
	}
	var err error
	s.conn, err = amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	go s.rerun()
	s.conn.NotifyClose(s.errCh)
	return s, nil
}

// CloseConnection closes the connection; the subscriber becomes unusable.
func (s *Subscriber) CloseConnection() error {
	s.mtxState.Lock()
	s.closed = true
	s.mtxState.Unlock()
	if !s.conn.IsClosed() {
		return s.conn.Close()
	}
	return nil
}

/*
Subscribe declares the fanout exchange, binds an anonymous queue to it
and consumes deliveries on a goroutine until stopCh is closed.
*/
func (s *Subscriber) Subscribe(exchangeName string, handler HandleFunc, stopCh <-chan struct{}) error {
	ch, err := s.conn.Channel()
	if err != nil {
		return err
	}

	err = ch.ExchangeDeclare(
		exchangeName,
		amqp.ExchangeFanout,
		true,
		false,
		false,
		false,
		nil)
	if err != nil {
		return err
	}

	queue, err := ch.QueueDeclare(
		"",
		false,
		true,
		false,
		false,
		nil)
	if err != nil {
		return err
	}

	err = ch.QueueBind(
		queue.Name,
		exchangeName,
		exchangeName,
		false,
		nil)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(
		queue.Name, // queue
		"",         // consumer
		true,       // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return err
	}

	s.mtxState.Lock()
	index := s.nextSlot
	s.nextSlot++
	s.redoLogs[index] = redo{exchangeName: exchangeName, handler: handler, stopCh: stopCh}
	s.mtxState.Unlock()

	stopConnCh := make(chan *amqp.Error)
	s.conn.NotifyClose(stopConnCh)

	go func() {
		select {
		case <-stopConnCh:
			return
		case <-stopCh:
			s.mtxState.Lock()
			delete(s.redoLogs, index)
			s.mtxState.Unlock()
			_ = ch.Close()
		}
	}()
	go func() {
		for d := range msgs {
			handler(d)
		}
	}()
	return nil
}

func (s *Subscriber) rerun() {
	for range s.errCh {
		s.mtxState.Lock()
		closed := s.closed
		s.mtxState.Unlock()
		if closed {
			klog.Infof("Subscriber : closed connection normally\n")
			return
		}
		recovered := false
		for i := 1; i <= s.maxRetry; i++ {
			klog.Warnf("Subscriber : trying to reconnect : retry - %d\n", i)
			if err := s.reconnect(); err == nil {
				s.redoAll()
				recovered = true
				break
			}
			time.Sleep(s.retryInterval)
		}
		if !recovered {
			klog.Fatalf("Subscriber : could not reconnect after %d retries\n", s.maxRetry)
		}
	}
}

func (s *Subscriber) reconnect() error {
	conn, err := amqp.Dial(s.connUrl)
	if err != nil {
		return err
	}
	s.conn = conn
	s.conn.NotifyClose(s.errCh)
	return nil
}

func (s *Subscriber) redoAll() {
	s.mtxState.Lock()
	redoCopy := s.redoLogs
	s.redoLogs = make(map[int]redo)
	s.nextSlot = 0
	s.mtxState.Unlock()
	for _, r := range redoCopy {
		if err := s.Subscribe(r.exchangeName, r.handler, r.stopCh); err != nil {
			klog.Errorf("Subscriber : error redoing subscription on %s : %s\n", r.exchangeName, err.Error())
		}
	}
}
