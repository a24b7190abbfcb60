package messaging

import (
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"autoscaler/pkg/klog"
)

// Publisher broadcasts messages on fanout exchanges. A broken connection
// is re-dialed in the background up to MaxRetry times.
type Publisher struct {
	conn          *amqp.Connection
	connUrl       string
	maxRetry      int
	retryInterval time.Duration
	closed        bool
	mtxClosed     sync.Mutex
}

func NewPublisher(config *QConfig) (*Publisher, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", config.User, config.Password, config.Host, config.Port)
	p := &Publisher{
		connUrl:       url,
		maxRetry:      config.MaxRetry,
		retryInterval: config.RetryInterval,
	}
	var err error
	p.conn, err = amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	errCh := make(chan *amqp.Error)
	go p.rerun(errCh)
	p.conn.NotifyClose(errCh)
	return p, nil
}

// Publish broadcasts one message on the given exchange and returns
// immediately. The exchange is declared as durable fanout.
func (p *Publisher) Publish(exchangeName string, body []byte, contentType string) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

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

	return ch.Publish(
		exchangeName,
		exchangeName,
		false,
		false,
		amqp.Publishing{
			ContentType: contentType,
			Body:        body,
		})
}

func (p *Publisher) CloseConnection() error {
	p.mtxClosed.Lock()
	p.closed = true
	p.mtxClosed.Unlock()
	if !p.conn.IsClosed() {
		return p.conn.Close()
	}
	return nil
}

func (p *Publisher) rerun(errCh <-chan *amqp.Error) {
	<-errCh
	p.mtxClosed.Lock()
	closed := p.closed
	p.mtxClosed.Unlock()
	if closed {
		klog.Infof("Publisher : closed connection normally\n")
		return
	}
	for i := 1; i <= p.maxRetry; i++ {
		klog.Warnf("Publisher : trying to reconnect : retry - %d\n", i)
		if err := p.reconnect(); err == nil {
			klog.Infof("Publisher : reconnected!\n")
			return
		}
		time.Sleep(p.retryInterval)
	}
	klog.Errorf("Publisher : could not reconnect after %d retries\n", p.maxRetry)
}

func (p *Publisher) reconnect() error {
	conn, err := amqp.Dial(p.connUrl)
	if err != nil {
		return err
	}
	p.conn = conn
	errCh := make(chan *amqp.Error)
	go p.rerun(errCh)
	p.conn.NotifyClose(errCh)
	return nil
}
