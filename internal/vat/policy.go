// Package vat decides the VAT rate recorded for each order item row.
package vat

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SheetPremium is the sentinel written to the sheet for premium devices,
// whose VAT is resolved manually downstream.
const SheetPremium = "-1"

// ratesByCountry holds the standard VAT rate for every EU member state we
// ship to, keyed by ISO 3166-1 alpha-2 code.
var ratesByCountry = map[string]decimal.Decimal{
	"AT": decimal.NewFromInt(20),
	"BE": decimal.NewFromInt(21),
	"BG": decimal.NewFromInt(20),
	"HR": decimal.NewFromInt(25),
	"CY": decimal.NewFromInt(19),
	"CZ": decimal.NewFromInt(21),
	"DK": decimal.NewFromInt(25),
	"EE": decimal.NewFromInt(22),
	"FI": decimal.RequireFromString("25.5"),
	"FR": decimal.NewFromInt(20),
	"GR": decimal.NewFromInt(24),
	"DE": decimal.NewFromInt(19),
	"ES": decimal.NewFromInt(21),
	"NL": decimal.NewFromInt(21),
	"IE": decimal.NewFromInt(23),
	"LU": decimal.NewFromInt(17),
	"LT": decimal.NewFromInt(21),
	"LV": decimal.NewFromInt(21),
	"MT": decimal.NewFromInt(18),
	"PL": decimal.NewFromInt(23),
	"PT": decimal.NewFromInt(23),
	"RO": decimal.NewFromInt(19),
	"SK": decimal.NewFromInt(23),
	"SI": decimal.NewFromInt(22),
	"SE": decimal.NewFromInt(25),
	"HU": decimal.NewFromInt(27),
	"IT": decimal.NewFromInt(22),
}

// Result is a resolved VAT decision for one order item.
type Result struct {
	Rate        decimal.Decimal
	Determined  bool
	Premium     bool
	NeedsReview bool
}

// Input captures everything the policy needs about an order item.
type Input struct {
	CountryCode string
	ItemName    string
	// HasTaxID is true when the buyer supplied a company VAT number.
	HasTaxID bool
}

// Determine resolves the VAT rate for an order item.
//
// Premium devices always get the sentinel regardless of destination. B2B
// buyers (tax id present) are zero-rated everywhere except Poland, where
// the domestic rate still applies. A destination missing from the rate
// table yields an undetermined result; when a tax id is also present the
// row is flagged for manual review rather than silently zero-rated.
func Determine(in Input) Result {
	if IsPremium(in.ItemName) {
		return Result{Premium: true, Determined: true}
	}

	country := strings.ToUpper(strings.TrimSpace(in.CountryCode))
	rate, known := ratesByCountry[country]
	if !known {
		return Result{NeedsReview: in.HasTaxID}
	}

	if in.HasTaxID {
		if country == "PL" {
			return Result{Rate: rate, Determined: true}
		}
		return Result{Rate: decimal.Zero, Determined: true}
	}
	return Result{Rate: rate, Determined: true}
}

// IsPremium reports whether the item is a premium device, which carries
// resale-margin taxation instead of a standard rate.
func IsPremium(itemName string) bool {
	return strings.Contains(strings.ToLower(itemName), "iphone")
}

// SheetValue renders the decision the way the spreadsheet stores it: the
// premium sentinel, an empty cell when undetermined, or the bare rate.
func (r Result) SheetValue() string {
	if r.Premium {
		return SheetPremium
	}
	if !r.Determined {
		return ""
	}
	return r.Rate.String()
}
