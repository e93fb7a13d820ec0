package records

import "StockPull/internal/domain/models"

// Merge left-joins the present overlays onto the roster. The output has one
// record per roster row, in roster order. Roster rows are keyed with
// tradeDate; overlay rows with their own trade date. When an overlay has
// several rows for a key the first one wins.
func Merge(tradeDate string, roster []models.RosterRow, overlays models.Overlays) []models.InstrumentRecord {
	var quotes map[string]*models.QuoteRow
	if overlays.Quotes.Present() {
		quotes = make(map[string]*models.QuoteRow, len(overlays.Quotes.Rows))
		for i := range overlays.Quotes.Rows {
			row := &overlays.Quotes.Rows[i]
			k := Key(row.Code, row.Quote.TradeDate)
			if _, dup := quotes[k]; !dup {
				quotes[k] = row
			}
		}
	}

	var indicators map[string]*models.IndicatorRow
	if overlays.Indicators.Present() {
		indicators = make(map[string]*models.IndicatorRow, len(overlays.Indicators.Rows))
		for i := range overlays.Indicators.Rows {
			row := &overlays.Indicators.Rows[i]
			k := Key(row.Code, row.Indicators.TradeDate)
			if _, dup := indicators[k]; !dup {
				indicators[k] = row
			}
		}
	}

	out := make([]models.InstrumentRecord, 0, len(roster))
	for _, r := range roster {
		rec := models.InstrumentRecord{
			Code:       r.Code,
			Symbol:     r.Symbol,
			Name:       r.Name,
			Area:       r.Area,
			Industry:   r.Industry,
			Market:     r.Market,
			Exchange:   r.Exchange,
			ListStatus: r.ListStatus,
			ListDate:   r.ListDate,
			TradeDate:  tradeDate,
		}

		k := Key(r.Code, tradeDate)
		if q, ok := quotes[k]; ok {
			quote := q.Quote
			rec.Quote = &quote
		}
		if ind, ok := indicators[k]; ok {
			v := ind.Indicators
			rec.Indicators = &v
		}
		out = append(out, rec)
	}
	return out
}
