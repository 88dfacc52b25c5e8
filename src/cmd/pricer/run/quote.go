package run

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
	"github.com/jiaming2012/option-pricer/src/pricing"
)

type QuoteArgs struct {
	APIKey       string
	Symbol       string
	Spot         float64
	Strikes      []float64
	Expiration   string
	YearFraction float64
	RiskFreeRate float64
	Volatility   float64
	Location     *time.Location
	Now          time.Time
}

type QuoteRow struct {
	Spot         float64
	Volatility   float64
	OptionType   eventmodels.OptionType
	Strike       float64
	TimeToExpiry float64
	Theoretical  float64
	Intrinsic    float64
}

func (r QuoteRow) TimeValue() float64 {
	return r.Theoretical - r.Intrinsic
}

// FetchLastTradePrice returns the price of the most recent trade of symbol.
func FetchLastTradePrice(ctx context.Context, apiKey string, symbol eventmodels.StockSymbol) (float64, error) {
	client := polygon.New(apiKey)

	resp, err := client.GetLastTrade(ctx, &models.GetLastTradeParams{Ticker: symbol.String()})
	if err != nil {
		return 0, fmt.Errorf("FetchLastTradePrice: failed to fetch last trade for %s: %w", symbol, err)
	}

	if resp.Results.Price <= 0 {
		return 0, fmt.Errorf("FetchLastTradePrice: no trade price for %s", symbol)
	}

	return resp.Results.Price, nil
}

const volatilityLookback = 90 * 24 * time.Hour

// FetchDailyCloses returns the adjusted daily closes of symbol between from and to, oldest first.
func FetchDailyCloses(ctx context.Context, apiKey string, symbol eventmodels.StockSymbol, from, to time.Time) ([]float64, error) {
	client := polygon.New(apiKey)

	params := models.ListAggsParams{
		Ticker:     symbol.String(),
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithOrder(models.Asc).WithAdjusted(true)

	iter := client.ListAggs(ctx, params)

	var closes []float64
	for iter.Next() {
		closes = append(closes, iter.Item().Close)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("FetchDailyCloses: failed to fetch aggregates for %s: %w", symbol, err)
	}

	return closes, nil
}

// Quote prices a call and a put at each strike for one underlying price. A zero spot is
// replaced by the last trade and a zero volatility by the historical volatility of the
// last 90 days, both fetched from Polygon.
func Quote(args QuoteArgs) ([]QuoteRow, error) {
	symbol := eventmodels.NewStockSymbol(args.Symbol)
	if symbol == "" {
		return nil, fmt.Errorf("Quote: missing symbol")
	}

	if len(args.Strikes) == 0 {
		return nil, fmt.Errorf("Quote: at least one strike is required")
	}

	spot := args.Spot
	if spot <= 0 {
		if args.APIKey == "" {
			return nil, fmt.Errorf("Quote: either a spot price or POLYGON_API_KEY is required")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var err error
		spot, err = FetchLastTradePrice(ctx, args.APIKey, symbol)
		if err != nil {
			return nil, err
		}

		log.Infof("using last trade price %.4f for %s", spot, symbol)
	}

	now := args.Now
	if now.IsZero() {
		now = time.Now()
	}

	volatility := args.Volatility
	if volatility == 0 {
		if args.APIKey == "" {
			return nil, fmt.Errorf("Quote: either a volatility or POLYGON_API_KEY is required")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		closes, err := FetchDailyCloses(ctx, args.APIKey, symbol, now.Add(-volatilityLookback), now)
		if err != nil {
			return nil, err
		}

		volatility, err = pricing.HistoricalVolatility(closes, pricing.TradingDaysPerYear)
		if err != nil {
			return nil, fmt.Errorf("Quote: failed to estimate volatility: %w", err)
		}

		log.Infof("using historical volatility %.4f from %d daily closes of %s", volatility, len(closes), symbol)
	}

	var expiration time.Time
	if args.Expiration != "" {
		var err error
		expiration, err = time.ParseInLocation("2006-01-02", args.Expiration, args.Location)
		if err != nil {
			return nil, fmt.Errorf("Quote: failed to parse expiration: %w", err)
		}

		expiration = expiration.Add(16 * time.Hour)
	}

	var rows []QuoteRow
	for _, strike := range args.Strikes {
		for _, optionType := range []eventmodels.OptionType{eventmodels.Call, eventmodels.Put} {
			contract := eventmodels.NewOptionContract(symbol, strike, expiration, optionType)
			contract.YearFraction = args.YearFraction

			T := contract.TimeToExpiry(now)
			price, err := pricing.Price(spot, strike, T, args.RiskFreeRate, volatility, optionType)
			if err != nil {
				return nil, fmt.Errorf("Quote: %s: %w", contract, err)
			}

			rows = append(rows, QuoteRow{
				Spot:         spot,
				Volatility:   volatility,
				OptionType:   optionType,
				Strike:       strike,
				TimeToExpiry: T,
				Theoretical:  price,
				Intrinsic:    pricing.Intrinsic(spot, strike, optionType),
			})
		}
	}

	return rows, nil
}

func RenderQuote(out io.Writer, symbol string, spot float64, rows []QuoteRow) {
	p := message.NewPrinter(language.English)

	fmt.Fprintf(out, "%s @ $%s\n", eventmodels.NewStockSymbol(symbol), p.Sprintf("%.2f", spot))

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Type", "Strike", "T (yrs)", "Vol", "Theoretical", "Intrinsic", "Time Value"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, r := range rows {
		table.Append([]string{
			string(r.OptionType),
			fmt.Sprintf("$%s", p.Sprintf("%.2f", r.Strike)),
			fmt.Sprintf("%.4f", r.TimeToExpiry),
			fmt.Sprintf("%.1f%%", r.Volatility*100),
			fmt.Sprintf("$%s", p.Sprintf("%.4f", r.Theoretical)),
			fmt.Sprintf("$%s", p.Sprintf("%.4f", r.Intrinsic)),
			fmt.Sprintf("$%s", p.Sprintf("%.4f", r.TimeValue())),
		})
	}

	table.Render()
}
