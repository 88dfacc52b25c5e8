package eventpubsub

type EventName string

const (
	StockTickEvent       EventName = "StockTickEvent"
	PricingResultEvent   EventName = "PricingResultEvent"
	ConnectionStateEvent EventName = "ConnectionStateEvent"
	StreamErrorEvent     EventName = "StreamErrorEvent"
)
