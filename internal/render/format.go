package render

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/tensortrade/council-dashboard/internal/model"
)

// Missing is shown in place of any absent scalar.
const Missing = "--"

const (
	ColorProfit  = "#44ff88"
	ColorLoss    = "#ff4444"
	ColorNeutral = "#8899aa"
)

// Risk bands, computed from risk_index alone.
const (
	BandLow    = "low"
	BandMedium = "medium"
	BandHigh   = "high"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// RiskBand classifies a risk index: low below 40, medium below 70, else high.
func RiskBand(x float64) string {
	switch {
	case x < 40:
		return BandLow
	case x < 70:
		return BandMedium
	default:
		return BandHigh
	}
}

// BarWidth clamps a risk index to [0,100] and renders it in shortest
// form, e.g. 39.6 -> "39.6".
func BarWidth(x float64) string {
	if math.IsNaN(x) {
		return "0"
	}
	return strconv.FormatFloat(math.Max(0, math.Min(100, x)), 'f', -1, 64)
}

// Scalar renders a number in its shortest form, or Missing.
func Scalar(n model.Number) string {
	if !n.Valid {
		return Missing
	}
	return n.String()
}

// Percent1 renders a one-decimal percentage, e.g. 66.666 -> "66.7%".
func Percent1(n model.Number) string {
	if !n.Valid {
		return Missing
	}
	return decimal.NewFromFloat(n.Value).StringFixed(1) + "%"
}

// Money renders a two-decimal dollar amount with the sign before the
// currency symbol, e.g. -12.345 -> "-$12.35". Rounding is half away from zero.
func Money(n model.Number) string {
	if !n.Valid {
		return Missing
	}
	return money(decimal.NewFromFloat(n.Value))
}

func money(d decimal.Decimal) string {
	d = d.Round(2)
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// PnLColor is profit green for values >= 0, loss red otherwise. The sign
// is taken after the same rounding Money applies, so "$0.00" is never red.
func PnLColor(n model.Number) string {
	switch {
	case !n.Valid:
		return ColorNeutral
	case decimal.NewFromFloat(n.Value).Round(2).IsNegative():
		return ColorLoss
	default:
		return ColorProfit
	}
}

// Change renders a move as a signed percentage. The backend may send the
// magnitude only, so the sign follows the direction.
func Change(n model.Number, up bool) string {
	if !n.Valid {
		return Missing
	}
	mag := decimal.NewFromFloat(math.Abs(n.Value)).String()
	switch {
	case n.Value == 0:
		return mag + "%"
	case up:
		return "+" + mag + "%"
	default:
		return "-" + mag + "%"
	}
}

// Price renders "$<price>" or Missing.
func Price(n model.Number) string {
	if !n.Valid {
		return Missing
	}
	return "$" + n.String()
}

// Volume renders a grouped-digit volume, e.g. 1234567 -> "1,234,567".
func Volume(n model.Number) string {
	if !n.Valid {
		return Missing
	}
	if n.Value == math.Trunc(n.Value) && math.Abs(n.Value) < 1<<53 {
		return humanize.Comma(int64(n.Value))
	}
	return humanize.Commaf(n.Value)
}

// SafeColor returns c when it is a hex colour, else "".
func SafeColor(c string) string {
	c = strings.TrimSpace(c)
	if hexColor.MatchString(c) {
		return c
	}
	return ""
}
