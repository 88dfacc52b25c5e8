package eventpubsub

import (
	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"
)

// Bus fans pricer events out to asynchronous subscribers so slow consumers never hold up
// the stream worker.
type Bus struct {
	bus EventBus.Bus
}

func New() *Bus {
	return &Bus{
		bus: EventBus.New(),
	}
}

func (b *Bus) Publish(topic EventName, event interface{}) {
	b.bus.Publish(string(topic), event)
}

func (b *Bus) Subscribe(topic EventName, callbackFn interface{}) error {
	if err := b.bus.SubscribeAsync(string(topic), callbackFn, false); err != nil {
		return err
	}

	log.Infof("Subscribed to topic %s", topic)
	return nil
}

// WaitAsync blocks until every asynchronous handler has returned.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
