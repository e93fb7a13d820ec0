package calendar

import (
	"errors"
	"testing"
	"time"

	"StockPull/internal/domain/models"
)

func TestGenerateDayCounts(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2024, 2, 29},
		{2023, 2, 28},
		{2024, 4, 30},
		{2024, 1, 31},
		{2100, 2, 28},
	}
	for _, c := range cases {
		days, err := Generate("SSE", c.year, c.month, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(days) != c.want {
			t.Fatalf("%d-%02d: expected %d days, got %d", c.year, c.month, c.want, len(days))
		}
		for i := 1; i < len(days); i++ {
			if !days[i].Date.After(days[i-1].Date) {
				t.Fatalf("days not strictly ascending at %d", i)
			}
		}
	}
}

func TestGenerateLeapFebruaryWithoutMarkers(t *testing.T) {
	days, err := Generate("SSE", 2024, 2, Markers{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 29 {
		t.Fatalf("expected 29 days, got %d", len(days))
	}
	for _, d := range days {
		if d.IsTrading || d.IsHoliday {
			t.Fatalf("%s: unmarked day must not be trading or holiday", d.CalDate)
		}
		wd := d.Date.Weekday()
		if d.IsWeekend != (wd == time.Saturday || wd == time.Sunday) {
			t.Fatalf("%s: wrong weekend flag", d.CalDate)
		}
	}
	// 2024-02-03 was a Saturday, 2024-02-05 a Monday
	if !days[2].IsWeekend || days[4].IsWeekend {
		t.Fatalf("unexpected weekend flags around 2024-02-03")
	}
}

func TestGenerateMarkers(t *testing.T) {
	markers := Markers{
		"20240209": false, // Friday, Spring Festival
		"20240210": false, // Saturday
		"20240219": true,
		"20240204": true, // Sunday make-up trading day
	}
	days, err := Generate("SSE", 2024, 2, markers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byDate := map[string]models.CalendarDay{}
	for _, d := range days {
		byDate[d.CalDate] = d
	}

	if d := byDate["20240209"]; d.IsTrading || !d.IsHoliday || d.IsWeekend {
		t.Fatalf("20240209 should be a holiday: %+v", d)
	}
	if d := byDate["20240210"]; d.IsTrading || d.IsHoliday || !d.IsWeekend {
		t.Fatalf("20240210 should be a weekend, not a holiday: %+v", d)
	}
	if d := byDate["20240219"]; !d.IsTrading || d.IsHoliday {
		t.Fatalf("20240219 should be trading: %+v", d)
	}
	if d := byDate["20240204"]; !d.IsTrading || !d.IsWeekend || d.IsHoliday {
		t.Fatalf("20240204 should be a weekend trading day: %+v", d)
	}
	if d := byDate["20240219"]; d.ISODate != "2024-02-19" || d.Exchange != "SSE" {
		t.Fatalf("unexpected identity fields: %+v", d)
	}
	if n := TradingDays(days); n != 2 {
		t.Fatalf("expected 2 trading days, got %d", n)
	}
}

func TestGenerateRejectsBadMonth(t *testing.T) {
	var verr *models.ValidationError
	if _, err := Generate("SSE", 2024, 13, nil); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := Generate("SSE", 24, 1, nil); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestMarkersFrom(t *testing.T) {
	m := MarkersFrom("SSE", []models.TradeDayMarker{
		{Exchange: "SSE", CalDate: "20240102", IsOpen: true},
		{Exchange: "SZSE", CalDate: "20240103", IsOpen: true},
		{CalDate: "20240104", IsOpen: false},
	})
	if len(m) != 2 || !m["20240102"] {
		t.Fatalf("unexpected markers %v", m)
	}
	if open, ok := m["20240104"]; !ok || open {
		t.Fatalf("expected closed marker for 20240104")
	}
}
