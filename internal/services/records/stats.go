package records

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"StockPull/internal/domain/models"
)

var hundred = decimal.NewFromInt(100)

// Summarize computes distribution statistics over a merged record set.
// topN <= 0 disables the industry ranking.
func Summarize(recs []models.InstrumentRecord, topN int) models.Stats {
	st := models.Stats{
		Total:         len(recs),
		ByMarket:      make([]models.MarketCount, 0, len(models.Markets())),
		TopIndustries: []models.IndustryShare{},
	}

	byMarket := make(map[models.Market]int)
	var (
		industryOrder []string
		industryCount = make(map[string]int)
		pctSum        = decimal.Zero
		turnoverSum   = decimal.Zero
	)

	for _, r := range recs {
		byMarket[r.Market]++

		if r.Industry != "" {
			if _, seen := industryCount[r.Industry]; !seen {
				industryOrder = append(industryOrder, r.Industry)
			}
			industryCount[r.Industry]++
		}

		if q := r.Quote; q != nil {
			st.Coverage.QuoteCount++
			switch {
			case q.Change > 0:
				st.Price.Advancers++
			case q.Change < 0:
				st.Price.Decliners++
			default:
				st.Price.Unchanged++
			}
			st.Price.TotalVolume = st.Price.TotalVolume.Add(decimal.NewFromFloat(q.Volume))
			st.Price.TotalAmount = st.Price.TotalAmount.Add(decimal.NewFromFloat(q.Amount))
			pctSum = pctSum.Add(decimal.NewFromFloat(q.ChangePct))
		}

		if ind := r.Indicators; ind != nil {
			st.Coverage.IndicatorCount++
			st.Valuation.TotalMarketCap = st.Valuation.TotalMarketCap.Add(decimal.NewFromFloat(ind.TotalMarketCap))
			st.Valuation.FloatMarketCap = st.Valuation.FloatMarketCap.Add(decimal.NewFromFloat(ind.FloatMarketCap))
			turnoverSum = turnoverSum.Add(decimal.NewFromFloat(ind.TurnoverRate))
		}
	}

	for _, m := range models.Markets() {
		st.ByMarket = append(st.ByMarket, models.MarketCount{Market: m, Count: byMarket[m]})
	}

	if st.Total == 0 {
		st.NoData = true
		return st
	}

	st.Coverage.QuotePercent = percent(st.Coverage.QuoteCount, st.Total)
	st.Coverage.IndicatorsPercent = percent(st.Coverage.IndicatorCount, st.Total)

	if n := st.Coverage.QuoteCount; n > 0 {
		st.Price.AvgChangePct = pctSum.Div(decimal.NewFromInt(int64(n))).Round(4)
	}
	if n := st.Coverage.IndicatorCount; n > 0 {
		st.Valuation.AvgTurnoverRate = turnoverSum.Div(decimal.NewFromInt(int64(n))).Round(4)
	}

	if topN > 0 && len(industryOrder) > 0 {
		// stable sort keeps first-seen order among equal counts
		sort.SliceStable(industryOrder, func(i, j int) bool {
			return industryCount[industryOrder[i]] > industryCount[industryOrder[j]]
		})
		if len(industryOrder) > topN {
			industryOrder = industryOrder[:topN]
		}
		total := decimal.NewFromInt(int64(st.Total))
		for _, name := range industryOrder {
			c := industryCount[name]
			share, _ := decimal.NewFromInt(int64(c)).Mul(hundred).Div(total).Round(2).Float64()
			st.TopIndustries = append(st.TopIndustries, models.IndustryShare{
				Industry: name,
				Count:    c,
				Share:    share,
			})
		}
	}

	return st
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(total)))
}
