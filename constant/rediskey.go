package constant

import (
	"fmt"
	"time"
)

const (
	BasePrefix = "tinylink:"
	Separator  = ":"
)

// Redis key templates
const (
	DailyClicks   = BasePrefix + "clicks" + Separator + "%s"                     // tinylink:clicks:yyyyMMdd (hash: code -> clicks)
	DailyVisitors = BasePrefix + "visitors" + Separator + "%s" + Separator + "%s" // tinylink:visitors:yyyyMMdd:code (HyperLogLog)
)

// DayKeyLayout is the date layout used inside Redis keys.
const DayKeyLayout = "20060102"

// GetDayKey formats t as a day bucket (yyyyMMdd).
func GetDayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// GetDailyClicksKey builds tinylink:clicks:yyyyMMdd
func GetDailyClicksKey(day string) string {
	return fmt.Sprintf(DailyClicks, day)
}

// GetDailyVisitorsKey builds tinylink:visitors:yyyyMMdd:code
func GetDailyVisitorsKey(code, day string) string {
	return fmt.Sprintf(DailyVisitors, day, code)
}
