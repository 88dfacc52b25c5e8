package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

type stubStream struct{}

func (stubStream) State() eventmodels.ConnectionState { return eventmodels.Subscribed }

func (stubStream) ParseErrors() int64 { return 3 }

type stubResults []eventmodels.PricingResultDTO

func (s stubResults) Snapshot() []eventmodels.PricingResultDTO { return s }

func TestStatusHandler(t *testing.T) {
	router := mux.NewRouter()
	SetupHandler(router, stubStream{}, stubResults{
		{Symbol: "AAPL", OptionType: "call", Strike: 100, TheoreticalPrice: 10.45},
		{Symbol: "AAPL", OptionType: "put", Strike: 100, TheoreticalPrice: 5.57},
		{Symbol: "MSFT", OptionType: "call", Strike: 400, TheoreticalPrice: 12.1},
	})
	server := NewServerHandler(router)

	t.Run("reports stream state and latest results", func(t *testing.T) {
		// arrange
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		rec := httptest.NewRecorder()

		// act
		server.ServeHTTP(rec, req)

		// assert
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			State       string                         `json:"state"`
			ParseErrors int64                          `json:"parse_errors"`
			Results     []eventmodels.PricingResultDTO `json:"results"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "subscribed", body.State)
		require.Equal(t, int64(3), body.ParseErrors)
		require.Len(t, body.Results, 3)
		require.Equal(t, 10.45, body.Results[0].TheoreticalPrice)
	})

	t.Run("filters results by symbol and type", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status?symbol=aapl&type=PUT&verbose=1", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Results []eventmodels.PricingResultDTO `json:"results"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Len(t, body.Results, 1)
		require.Equal(t, 5.57, body.Results[0].TheoreticalPrice)
	})

	t.Run("invalid option type is a bad request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status?type=straddle", nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "bad_request")
	})

	t.Run("unknown routes return a json error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, rec.Body.String(), "not_found")
	})
}
