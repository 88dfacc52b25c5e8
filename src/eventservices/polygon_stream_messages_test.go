package eventservices

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

func TestBuildAuthMessage(t *testing.T) {
	msg, err := BuildAuthMessage("abc123")
	require.NoError(t, err)
	require.Equal(t, `{"action":"auth","params":"abc123"}`, string(msg))
}

func TestBuildSubscribeMessage(t *testing.T) {
	t.Run("joins trade channels for every symbol", func(t *testing.T) {
		msg, err := BuildSubscribeMessage([]eventmodels.StockSymbol{"AAPL", "msft", "SPY"})
		require.NoError(t, err)
		require.Equal(t, `{"action":"subscribe","params":"T.AAPL,T.MSFT,T.SPY"}`, string(msg))
	})

	t.Run("single symbol", func(t *testing.T) {
		msg, err := BuildSubscribeMessage([]eventmodels.StockSymbol{"AAPL"})
		require.NoError(t, err)
		require.Equal(t, `{"action":"subscribe","params":"T.AAPL"}`, string(msg))
	})

	t.Run("no symbols", func(t *testing.T) {
		_, err := BuildSubscribeMessage(nil)
		require.Error(t, err)
	})
}

func TestParsePolygonFrame(t *testing.T) {
	t.Run("array of trades and statuses", func(t *testing.T) {
		frame, err := ParsePolygonFrame([]byte(`[
			{"ev":"status","status":"auth_success","message":"authenticated"},
			{"ev":"T","sym":"AAPL","i":"52983525029461","x":4,"p":190.12,"s":50,"c":[12,37],"t":1700000000123,"q":1063,"z":3}
		]`))
		require.NoError(t, err)

		require.Len(t, frame.Statuses, 1)
		require.Equal(t, "auth_success", frame.Statuses[0].Status)
		require.Equal(t, []eventmodels.StockTick{{Symbol: "AAPL", Price: 190.12, Timestamp: 1700000000123}}, frame.Ticks)
		require.Empty(t, frame.Errors)
	})

	t.Run("single object", func(t *testing.T) {
		frame, err := ParsePolygonFrame([]byte(`{"ev":"T","sym":"msft","p":370,"t":1}`))
		require.NoError(t, err)
		require.Equal(t, []eventmodels.StockTick{{Symbol: "MSFT", Price: 370, Timestamp: 1}}, frame.Ticks)
	})

	t.Run("unknown events are ignored", func(t *testing.T) {
		frame, err := ParsePolygonFrame([]byte(`[{"ev":"AM","sym":"AAPL","o":1},{"foo":"bar"}]`))
		require.NoError(t, err)
		require.Empty(t, frame.Ticks)
		require.Empty(t, frame.Statuses)
		require.Empty(t, frame.Errors)
	})

	t.Run("invalid trades are reported per event", func(t *testing.T) {
		frame, err := ParsePolygonFrame([]byte(`[{"ev":"T","sym":"AAPL","p":0,"t":1},{"ev":"T","p":10,"t":2},{"ev":"T","sym":"AAPL","p":"bad"},{"ev":"T","sym":"AAPL","p":12},{"ev":"T","sym":"AAPL","p":11,"t":3}]`))
		require.NoError(t, err)
		require.Len(t, frame.Errors, 4)
		for _, err := range frame.Errors {
			require.ErrorIs(t, err, eventmodels.ErrParse)
		}

		require.Equal(t, []eventmodels.StockTick{{Symbol: "AAPL", Price: 11, Timestamp: 3}}, frame.Ticks)
	})

	t.Run("malformed frames", func(t *testing.T) {
		for _, data := range []string{``, `   `, `not json`, `[{"ev":"T"`, `42`} {
			_, err := ParsePolygonFrame([]byte(data))
			require.ErrorIs(t, err, eventmodels.ErrParse, "frame %q", data)
		}
	})
}
