package composer

import (
	"strings"
	"time"
	_ "time/tzdata" // merchant time zones must resolve on hosts without zoneinfo

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// formatMoney renders an amount with exactly two decimals, rounding half away from zero
func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// withCurrency appends the currency code, if any
func withCurrency(amount, code string) string {
	if code == "" {
		return amount
	}
	return amount + " " + code
}

// Regions whose default clock is 12-hour.
var twelveHourRegions = map[string]bool{
	"US": true, "CA": true, "AU": true, "NZ": true, "IN": true,
	"PH": true, "PK": true, "EG": true, "SA": true,
}

// dotDateLanguages write dates as dd.mm.yyyy
var dotDateLanguages = map[string]bool{
	"ro": true, "de": true, "ru": true, "pl": true, "cs": true,
	"sk": true, "tr": true, "uk": true, "fi": true, "nb": true,
}

// slashDateLanguages write dates as dd/mm/yyyy
var slashDateLanguages = map[string]bool{
	"fr": true, "es": true, "it": true, "pt": true, "el": true, "en": true,
}

type localeInfo struct {
	lang      string
	region    string
	hasRegion bool
	known     bool
}

func parseLocale(locale string) localeInfo {
	locale = strings.TrimSpace(strings.ReplaceAll(locale, "_", "-"))
	if locale == "" {
		return localeInfo{}
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return localeInfo{}
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	return localeInfo{
		lang:      base.String(),
		region:    region.String(),
		hasRegion: conf == language.Exact,
		known:     true,
	}
}

func (l localeInfo) twelveHour() bool {
	if !l.known {
		return false
	}
	if l.hasRegion {
		return twelveHourRegions[l.region]
	}
	return l.lang == "en"
}

func (l localeInfo) clockLayout() string {
	if l.twelveHour() {
		return "3:04:05 PM"
	}
	return "15:04:05"
}

func (l localeInfo) dateLayout() string {
	switch {
	case !l.known:
		return ""
	case l.twelveHour() && (l.region == "US" || !l.hasRegion):
		return "1/2/2006"
	case dotDateLanguages[l.lang]:
		return "02.01.2006"
	case slashDateLanguages[l.lang]:
		return "02/01/2006"
	default:
		return ""
	}
}

func location(tz string) *time.Location {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// formatTimeOfDay renders the clock time of t in the merchant's locale and time zone
func formatTimeOfDay(t time.Time, locale, tz string) string {
	return t.In(location(tz)).Format(parseLocale(locale).clockLayout())
}

// formatTimestamp renders date and time of t in the merchant's locale and time zone
func formatTimestamp(t time.Time, locale, tz string) string {
	l := parseLocale(locale)
	t = t.In(location(tz))
	date := l.dateLayout()
	if date == "" {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format(date) + ", " + t.Format(l.clockLayout())
}
