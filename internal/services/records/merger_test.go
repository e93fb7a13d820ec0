package records

import (
	"errors"
	"reflect"
	"testing"

	"StockPull/internal/domain/models"
)

func roster(codes ...string) []models.RosterRow {
	out := make([]models.RosterRow, 0, len(codes))
	for _, c := range codes {
		out = append(out, models.RosterRow{Code: c, Name: "n-" + c, Market: models.MarketMain, ListStatus: models.ListStatusListed})
	}
	return out
}

func TestKey(t *testing.T) {
	if got := Key("600000.SH", "20240101"); got != "600000.SH|20240101" {
		t.Fatalf("unexpected key %q", got)
	}
	if Key("600000.SH", "20240101") == Key("600000.SH", "20240102") {
		t.Fatalf("keys for different dates collide")
	}
}

func TestMergeKeepsRosterOrderAndCardinality(t *testing.T) {
	r := roster("000001.SZ", "600000.SH", "830799.BJ")
	quotes := []models.QuoteRow{
		{Code: "830799.BJ", Quote: models.QuoteOverlay{TradeDate: "20240102", Close: 3}},
		{Code: "999999.SH", Quote: models.QuoteOverlay{TradeDate: "20240102", Close: 99}},
		{Code: "000001.SZ", Quote: models.QuoteOverlay{TradeDate: "20240102", Close: 1}},
	}

	out := Merge("20240102", r, models.Overlays{Quotes: models.Ok(quotes)})
	if len(out) != len(r) {
		t.Fatalf("expected %d records, got %d", len(r), len(out))
	}
	for i := range r {
		if out[i].Code != r[i].Code {
			t.Fatalf("record %d: expected %s, got %s", i, r[i].Code, out[i].Code)
		}
	}
	if out[0].Quote == nil || out[0].Quote.Close != 1 {
		t.Fatalf("expected quote on 000001.SZ")
	}
	if out[1].Quote != nil {
		t.Fatalf("600000.SH has no quote row, got %+v", out[1].Quote)
	}
	if out[2].Quote == nil || out[2].Quote.Close != 3 {
		t.Fatalf("expected quote on 830799.BJ")
	}
}

func TestMergeIgnoresOtherTradeDates(t *testing.T) {
	quotes := []models.QuoteRow{{Code: "600000.SH", Quote: models.QuoteOverlay{TradeDate: "20231229", Close: 9}}}
	out := Merge("20240102", roster("600000.SH"), models.Overlays{Quotes: models.Ok(quotes)})
	if out[0].Quote != nil {
		t.Fatalf("quote from another trade date must not match")
	}
}

func TestMergeFirstDuplicateWins(t *testing.T) {
	inds := []models.IndicatorRow{
		{Code: "600000.SH", Indicators: models.IndicatorOverlay{TradeDate: "20240102", PE: 5}},
		{Code: "600000.SH", Indicators: models.IndicatorOverlay{TradeDate: "20240102", PE: 7}},
	}
	out := Merge("20240102", roster("600000.SH"), models.Overlays{Indicators: models.Ok(inds)})
	if out[0].Indicators == nil || out[0].Indicators.PE != 5 {
		t.Fatalf("expected first indicator row, got %+v", out[0].Indicators)
	}
}

func TestMergeFailedOverlayEqualsAbsent(t *testing.T) {
	r := roster("600000.SH", "000001.SZ")
	quotes := []models.QuoteRow{{Code: "600000.SH", Quote: models.QuoteOverlay{TradeDate: "20240101", Close: 10.5}}}

	failed := Merge("20240101", r, models.Overlays{
		Quotes:     models.Ok(quotes),
		Indicators: models.Failed[models.IndicatorRow](errors.New("boom")),
	})
	absent := Merge("20240101", r, models.Overlays{
		Quotes: models.Ok(quotes),
	})
	if !reflect.DeepEqual(failed, absent) {
		t.Fatalf("failed overlay should merge like an absent one\nfailed: %+v\nabsent: %+v", failed, absent)
	}
}

func TestMergeFailedOverlayIgnoresRows(t *testing.T) {
	res := models.Result[models.QuoteRow]{
		Requested: true,
		Rows:      []models.QuoteRow{{Code: "600000.SH", Quote: models.QuoteOverlay{TradeDate: "20240101"}}},
		Err:       errors.New("partial read"),
	}
	out := Merge("20240101", roster("600000.SH"), models.Overlays{Quotes: res})
	if out[0].Quote != nil {
		t.Fatalf("rows of a failed overlay must not be merged")
	}
}

func TestMergeDoesNotAliasOverlayRows(t *testing.T) {
	quotes := []models.QuoteRow{{Code: "600000.SH", Quote: models.QuoteOverlay{TradeDate: "20240101", Close: 1}}}
	out := Merge("20240101", roster("600000.SH"), models.Overlays{Quotes: models.Ok(quotes)})
	quotes[0].Quote.Close = 2
	if out[0].Quote.Close != 1 {
		t.Fatalf("record shares memory with the overlay input")
	}
}

func TestMergeEmptyRoster(t *testing.T) {
	out := Merge("20240101", nil, models.Overlays{})
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
}

func TestScenarioQuoteOnly(t *testing.T) {
	r := []models.RosterRow{{Code: "600000.SH", Name: "A", Market: models.MarketMain}}
	quotes := []models.QuoteRow{{Code: "600000.SH", Quote: models.QuoteOverlay{TradeDate: "20240101", Close: 10.5}}}

	out := Merge("20240101", r, models.Overlays{
		Quotes:     models.Ok(quotes),
		Indicators: models.Failed[models.IndicatorRow](errors.New("indicator fetch failed")),
	})
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	rec := out[0]
	if rec.Name != "A" || rec.Quote == nil || rec.Quote.Close != 10.5 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Indicators != nil {
		t.Fatalf("indicators must be absent")
	}

	st := Summarize(out, 5)
	if st.Coverage.QuotePercent != 100 || st.Coverage.IndicatorsPercent != 0 {
		t.Fatalf("unexpected coverage %+v", st.Coverage)
	}
}
