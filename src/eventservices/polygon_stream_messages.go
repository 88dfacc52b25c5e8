package eventservices

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	polygonws "github.com/polygon-io/client-go/websocket/models"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

const (
	polygonTradeChannelPrefix = "T."

	polygonEventTrade  = "T"
	polygonEventStatus = "status"

	polygonStatusConnected   = "connected"
	polygonStatusAuthSuccess = "auth_success"
	polygonStatusAuthFailed  = "auth_failed"
)

type polygonDirective struct {
	Action string `json:"action"`
	Params string `json:"params"`
}

// BuildAuthMessage returns {"action":"auth","params":"<apiKey>"}.
func BuildAuthMessage(apiKey string) ([]byte, error) {
	return json.Marshal(polygonDirective{Action: "auth", Params: apiKey})
}

// BuildSubscribeMessage returns one subscribe directive covering the trade channel of every symbol.
func BuildSubscribeMessage(symbols []eventmodels.StockSymbol) ([]byte, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("BuildSubscribeMessage: no symbols")
	}

	return json.Marshal(polygonDirective{Action: "subscribe", Params: subscribeParams(symbols)})
}

func subscribeParams(symbols []eventmodels.StockSymbol) string {
	topics := make([]string, 0, len(symbols))
	for _, s := range symbols {
		topics = append(topics, polygonTradeChannelPrefix+s.String())
	}

	return strings.Join(topics, ",")
}

// PolygonFrame is the decoded content of one inbound websocket message.
type PolygonFrame struct {
	Ticks    []eventmodels.StockTick
	Statuses []polygonws.ControlMessage
	// Errors holds events that were recognised but could not be converted.
	Errors []error
}

// ParsePolygonFrame decodes a frame holding either a single event object or an array of
// events. Unknown event types and unknown fields are ignored. An error is returned only
// when the frame as a whole is not valid JSON.
func ParsePolygonFrame(data []byte) (*PolygonFrame, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("ParsePolygonFrame: empty frame: %w", eventmodels.ErrParse)
	}

	var events []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &events); err != nil {
			return nil, fmt.Errorf("ParsePolygonFrame: %v: %w", err, eventmodels.ErrParse)
		}
	case '{':
		events = []json.RawMessage{data}
	default:
		return nil, fmt.Errorf("ParsePolygonFrame: unexpected leading byte %q: %w", data[0], eventmodels.ErrParse)
	}

	frame := &PolygonFrame{}
	for _, raw := range events {
		var ev polygonws.EventType
		if err := json.Unmarshal(raw, &ev); err != nil {
			frame.Errors = append(frame.Errors, fmt.Errorf("ParsePolygonFrame: %v: %w", err, eventmodels.ErrParse))
			continue
		}

		switch ev.EventType {
		case polygonEventTrade:
			tick, err := parsePolygonTrade(raw)
			if err != nil {
				frame.Errors = append(frame.Errors, err)
				continue
			}

			frame.Ticks = append(frame.Ticks, tick)
		case polygonEventStatus:
			var status polygonws.ControlMessage
			if err := json.Unmarshal(raw, &status); err != nil {
				frame.Errors = append(frame.Errors, fmt.Errorf("ParsePolygonFrame: status: %v: %w", err, eventmodels.ErrParse))
				continue
			}

			frame.Statuses = append(frame.Statuses, status)
		}
	}

	return frame, nil
}

func parsePolygonTrade(raw json.RawMessage) (eventmodels.StockTick, error) {
	var trade polygonws.EquityTrade
	if err := json.Unmarshal(raw, &trade); err != nil {
		return eventmodels.StockTick{}, fmt.Errorf("parsePolygonTrade: %v: %w", err, eventmodels.ErrParse)
	}

	tick := eventmodels.NewStockTick(eventmodels.StockSymbol(trade.Symbol), trade.Price, trade.Timestamp)
	if err := tick.Validate(); err != nil {
		return eventmodels.StockTick{}, fmt.Errorf("parsePolygonTrade: %v: %w", err, eventmodels.ErrParse)
	}

	return tick, nil
}
