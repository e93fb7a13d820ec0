package records

import (
	"testing"

	"StockPull/internal/domain/models"
)

func TestSummarizeEmpty(t *testing.T) {
	st := Summarize(nil, 10)
	if !st.NoData || st.Total != 0 {
		t.Fatalf("expected no-data result, got %+v", st)
	}
	if st.Coverage.QuotePercent != 0 || st.Coverage.IndicatorsPercent != 0 {
		t.Fatalf("expected zero coverage")
	}
	if len(st.ByMarket) != len(models.Markets()) {
		t.Fatalf("expected every market listed")
	}
	if len(st.TopIndustries) != 0 {
		t.Fatalf("expected no industries")
	}
}

func TestSummarizeCoverageRounding(t *testing.T) {
	recs := []models.InstrumentRecord{
		{Code: "a", Quote: &models.QuoteOverlay{}},
		{Code: "b", Quote: &models.QuoteOverlay{}},
		{Code: "c"},
	}
	st := Summarize(recs, 0)
	// 2/3 = 66.67%
	if st.Coverage.QuotePercent != 67 {
		t.Fatalf("expected 67, got %d", st.Coverage.QuotePercent)
	}
	if st.Coverage.QuoteCount != 2 {
		t.Fatalf("expected 2 quotes, got %d", st.Coverage.QuoteCount)
	}
}

func TestSummarizeByMarket(t *testing.T) {
	recs := []models.InstrumentRecord{
		{Code: "a", Market: models.MarketGEM},
		{Code: "b", Market: models.MarketMain},
		{Code: "c", Market: models.MarketGEM},
	}
	st := Summarize(recs, 0)
	got := map[models.Market]int{}
	for _, mc := range st.ByMarket {
		got[mc.Market] = mc.Count
	}
	if got[models.MarketGEM] != 2 || got[models.MarketMain] != 1 || got[models.MarketSTAR] != 0 {
		t.Fatalf("unexpected market counts %+v", st.ByMarket)
	}
	if st.ByMarket[0].Market != models.MarketMain {
		t.Fatalf("markets must be reported in fixed order")
	}
}

func TestSummarizeTopIndustriesTies(t *testing.T) {
	recs := []models.InstrumentRecord{
		{Code: "1", Industry: "Banks"},
		{Code: "2", Industry: "Software"},
		{Code: "3", Industry: "Software"},
		{Code: "4", Industry: "Chemicals"},
		{Code: "5", Industry: "Banks"},
		{Code: "6"},
		{Code: "7", Industry: "Steel"},
	}
	st := Summarize(recs, 3)
	if len(st.TopIndustries) != 3 {
		t.Fatalf("expected 3 industries, got %d", len(st.TopIndustries))
	}
	want := []string{"Banks", "Software", "Chemicals"}
	for i, w := range want {
		if st.TopIndustries[i].Industry != w {
			t.Fatalf("rank %d: expected %s, got %s", i, w, st.TopIndustries[i].Industry)
		}
	}
	// 2 of 7 records
	if st.TopIndustries[0].Share != 28.57 {
		t.Fatalf("unexpected share %v", st.TopIndustries[0].Share)
	}
}

func TestSummarizePriceAndValuation(t *testing.T) {
	recs := []models.InstrumentRecord{
		{Code: "a", Quote: &models.QuoteOverlay{Change: 0.5, ChangePct: 2, Volume: 100, Amount: 1000.5},
			Indicators: &models.IndicatorOverlay{TotalMarketCap: 10, FloatMarketCap: 5, TurnoverRate: 1.5}},
		{Code: "b", Quote: &models.QuoteOverlay{Change: -0.1, ChangePct: -1, Volume: 50, Amount: 0.25}},
		{Code: "c", Quote: &models.QuoteOverlay{}},
	}
	st := Summarize(recs, 0)
	if st.Price.Advancers != 1 || st.Price.Decliners != 1 || st.Price.Unchanged != 1 {
		t.Fatalf("unexpected breadth %+v", st.Price)
	}
	if st.Price.TotalVolume.String() != "150" {
		t.Fatalf("unexpected volume %s", st.Price.TotalVolume)
	}
	if st.Price.TotalAmount.String() != "1000.75" {
		t.Fatalf("unexpected amount %s", st.Price.TotalAmount)
	}
	if st.Price.AvgChangePct.String() != "0.3333" {
		t.Fatalf("unexpected avg pct %s", st.Price.AvgChangePct)
	}
	if st.Valuation.TotalMarketCap.String() != "10" || st.Valuation.AvgTurnoverRate.String() != "1.5" {
		t.Fatalf("unexpected valuation %+v", st.Valuation)
	}
}
