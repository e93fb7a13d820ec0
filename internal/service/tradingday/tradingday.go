package tradingday

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"

	"StockPull/pkg/util"
)

// chinaStandardTime is used when the exchange calendar cannot be loaded.
var chinaStandardTime = time.FixedZone("CST", 8*60*60)

// Resolver answers business-day questions for one exchange, identified by
// its ISO 10383 MIC (xshg for Shanghai, xshe for Shenzhen). Without a
// loaded calendar it falls back to Monday-Friday.
type Resolver struct {
	mic string
	cal *calendar.Calendar
	loc *time.Location
	now func() time.Time
}

func New(mic string) *Resolver {
	mic = strings.ToLower(strings.TrimSpace(mic))
	r := &Resolver{mic: mic, loc: chinaStandardTime, now: time.Now}
	if cal := calendar.GetCalendar(mic); cal != nil {
		r.cal = cal
		if cal.Loc != nil {
			r.loc = cal.Loc
		}
	}
	return r
}

func (r *Resolver) IsBusinessDay(t time.Time) bool {
	t = t.In(r.loc)
	if r.cal == nil {
		wd := t.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return r.cal.IsBusinessDay(t)
}

// PriorBusinessDay returns the last business day strictly before t's local date.
func (r *Resolver) PriorBusinessDay(t time.Time) time.Time {
	t = t.In(r.loc)
	d := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, r.loc)
	// the longest mainland closure (Spring Festival) is well under a month
	for i := 0; i < 31; i++ {
		d = d.AddDate(0, 0, -1)
		if r.IsBusinessDay(d) {
			return d
		}
	}
	return d
}

// DefaultTradeDate is the prior business day relative to now, as YYYYMMDD.
func (r *Resolver) DefaultTradeDate() string {
	return util.FormatDate8(r.PriorBusinessDay(r.now()))
}
