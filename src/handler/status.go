package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

type StreamStatus interface {
	State() eventmodels.ConnectionState
	ParseErrors() int64
}

type PricingResultsSnapshot interface {
	Snapshot() []eventmodels.PricingResultDTO
}

type statusResponse struct {
	State       eventmodels.ConnectionState    `json:"state"`
	ParseErrors int64                          `json:"parse_errors"`
	Results     []eventmodels.PricingResultDTO `json:"results"`
}

// statusQuery narrows the reported results. Empty fields match everything.
type statusQuery struct {
	Symbol     string `schema:"symbol"`
	OptionType string `schema:"type"`
}

func (q statusQuery) filter(results []eventmodels.PricingResultDTO) []eventmodels.PricingResultDTO {
	out := make([]eventmodels.PricingResultDTO, 0, len(results))
	for _, r := range results {
		if q.Symbol != "" && r.Symbol != q.Symbol {
			continue
		}

		if q.OptionType != "" && r.OptionType != q.OptionType {
			continue
		}

		out = append(out, r)
	}

	return out
}

func parseStatusQuery(r *http.Request) (statusQuery, error) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	var q statusQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		return statusQuery{}, fmt.Errorf("parseStatusQuery: %w", err)
	}

	q.Symbol = eventmodels.NewStockSymbol(q.Symbol).String()

	if q.OptionType != "" {
		optionType, err := eventmodels.NewOptionType(q.OptionType)
		if err != nil {
			return statusQuery{}, fmt.Errorf("parseStatusQuery: %w", err)
		}

		q.OptionType = string(optionType)
	}

	return q, nil
}

type errorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

func setResponse(response interface{}, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("setResponse: encode: %w", err)
	}

	return nil
}

func setErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if encodeErr := json.NewEncoder(w).Encode(&errorResponse{Type: errType, Msg: err.Error()}); encodeErr != nil {
		log.Errorf("setErrorResponse: encode: %v", encodeErr)
	}
}

// SetupHandler registers GET /status, reporting the stream state and the latest price of
// every contract. The optional symbol and type query parameters filter the results.
func SetupHandler(router *mux.Router, stream StreamStatus, results PricingResultsSnapshot) {
	status := func(w http.ResponseWriter, r *http.Request) {
		query, err := parseStatusQuery(r)
		if err != nil {
			setErrorResponse("bad_request", http.StatusBadRequest, err, w)
			return
		}

		resp := statusResponse{
			State:       stream.State(),
			ParseErrors: stream.ParseErrors(),
			Results:     query.filter(results.Snapshot()),
		}

		if err := setResponse(resp, w); err != nil {
			log.Errorf("status: failed to set response: %v", err)
		}
	}

	router.Handle("/status", otelhttp.WithRouteTag("/status", http.HandlerFunc(status))).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setErrorResponse("not_found", http.StatusNotFound, fmt.Errorf("no route for %s %s", r.Method, r.URL.Path), w)
	})
}

// NewServerHandler wraps the router with otelhttp server instrumentation.
func NewServerHandler(router *mux.Router) http.Handler {
	return otelhttp.NewHandler(router, "pricer-status")
}
