package eventservices

import "github.com/jiaming2012/option-pricer/src/eventmodels"

// PolygonStreamObserver receives stream events. All callbacks run on the client's worker
// goroutine, one at a time, and must return promptly.
type PolygonStreamObserver interface {
	OnTick(tick eventmodels.StockTick)
	OnStateChange(state eventmodels.ConnectionState)
	OnError(kind eventmodels.ErrorKind, message string)
}

// PolygonStreamObserverFuncs adapts plain functions to PolygonStreamObserver. Nil fields are skipped.
type PolygonStreamObserverFuncs struct {
	Tick        func(tick eventmodels.StockTick)
	StateChange func(state eventmodels.ConnectionState)
	Error       func(kind eventmodels.ErrorKind, message string)
}

func (f PolygonStreamObserverFuncs) OnTick(tick eventmodels.StockTick) {
	if f.Tick != nil {
		f.Tick(tick)
	}
}

func (f PolygonStreamObserverFuncs) OnStateChange(state eventmodels.ConnectionState) {
	if f.StateChange != nil {
		f.StateChange(state)
	}
}

func (f PolygonStreamObserverFuncs) OnError(kind eventmodels.ErrorKind, message string) {
	if f.Error != nil {
		f.Error(kind, message)
	}
}

type multiStreamObserver []PolygonStreamObserver

// MultiStreamObserver forwards every event to each observer in order.
func MultiStreamObserver(observers ...PolygonStreamObserver) PolygonStreamObserver {
	return multiStreamObserver(observers)
}

func (m multiStreamObserver) OnTick(tick eventmodels.StockTick) {
	for _, o := range m {
		o.OnTick(tick)
	}
}

func (m multiStreamObserver) OnStateChange(state eventmodels.ConnectionState) {
	for _, o := range m {
		o.OnStateChange(state)
	}
}

func (m multiStreamObserver) OnError(kind eventmodels.ErrorKind, message string) {
	for _, o := range m {
		o.OnError(kind, message)
	}
}
