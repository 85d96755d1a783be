package render

import (
	"math"
	"testing"

	"github.com/tensortrade/council-dashboard/internal/model"
)

func TestFormatters(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"money loss", Money(model.Num(-12.345)), "-$12.35"},
		{"money profit", Money(model.Num(4)), "$4.00"},
		{"money tiny loss rounds to zero", Money(model.Num(-0.001)), "$0.00"},
		{"money missing", Money(model.Number{}), Missing},
		{"percent", Percent1(model.Num(66.666)), "66.7%"},
		{"percent half up", Percent1(model.Num(0.05)), "0.1%"},
		{"change up", Change(model.Num(1.25), true), "+1.25%"},
		{"change down from magnitude", Change(model.Num(1.25), false), "-1.25%"},
		{"change down signed", Change(model.Num(-0.5), false), "-0.5%"},
		{"change flat", Change(model.Num(0), true), "0%"},
		{"price", Price(model.Num(187.5)), "$187.5"},
		{"volume", Volume(model.Num(1234567)), "1,234,567"},
		{"volume missing", Volume(model.Number{}), Missing},
		{"scalar", Scalar(model.Num(23.4)), "23.4"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, c.got, c.want)
		}
	}
}

func TestPnLColor(t *testing.T) {
	if PnLColor(model.Num(0)) != ColorProfit {
		t.Error("zero P&L is a profit colour")
	}
	if PnLColor(model.Num(-0.01)) != ColorLoss {
		t.Error("negative P&L is a loss colour")
	}
	if Money(model.Num(-0.001)) != "$0.00" || PnLColor(model.Num(-0.001)) != ColorProfit {
		t.Error("a loss that rounds to $0.00 should not be red")
	}
	if Money(model.Num(-0.005)) != "-$0.01" || PnLColor(model.Num(-0.005)) != ColorLoss {
		t.Error("a loss that rounds to -$0.01 should be red")
	}
}

func TestBarWidth(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{39.6, "39.6"},
		{55, "55"},
		{-3, "0"},
		{120.5, "100"},
		{math.NaN(), "0"},
	}
	for _, c := range cases {
		if got := BarWidth(c.in); got != c.want {
			t.Errorf("BarWidth(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
