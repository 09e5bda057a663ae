// Package fetch pulls marketplace orders into the spreadsheet and keeps the
// fetch cursor moving.
package fetch

import (
	"fmt"

	"github.com/vedion/refurbed-sync/internal/refurbed"
	"github.com/vedion/refurbed-sync/internal/sheet"
	"github.com/vedion/refurbed-sync/internal/vat"
)

// gradeRemap translates marketplace condition grades into the labels the
// warehouse uses. Unlisted grades pass through unchanged.
var gradeRemap = map[string]string{
	"B": "A 2",
	"C": "A-",
}

// MapOrder flattens one marketplace order into a spreadsheet row. Operator
// columns (kit id, warehouse, ERP id) start empty; the checkbox and the
// flag columns start at FALSE so operators see explicit checkbox values.
func MapOrder(order refurbed.Order) (sheet.OrderRow, error) {
	if order.ID == "" {
		return sheet.OrderRow{}, fmt.Errorf("order without id")
	}
	if len(order.Items) == 0 {
		return sheet.OrderRow{}, fmt.Errorf("order %s has no items", order.ID)
	}
	item := order.Items[0]

	decision := vat.Determine(vat.Input{
		CountryCode: order.Shipping.CountryCode,
		ItemName:    item.Name,
		HasTaxID:    order.HasTaxID(),
	})

	return sheet.OrderRow{
		Checkbox:      "FALSE",
		State:         order.State,
		CountryCode:   order.Shipping.CountryCode,
		CurrencyCode:  order.Currency,
		TotalPaid:     order.TotalPaid,
		VATRate:       decision.SheetValue(),
		Grade:         mapGrade(item.Offer.Grading, decision.Premium),
		KeyboardFlag:  "FALSE",
		BatteryFlag:   mapBatteryFlag(item.Offer.BatteryCondition),
		SKU:           item.SKU,
		ItemName:      item.Name,
		CustomerEmail: order.CustomerEmail,
		FirstName:     order.Shipping.FirstName,
		FamilyName:    order.Shipping.FamilyName,
		PhoneNumber:   order.Shipping.PhoneNumber,
		MarketplaceID: order.ID,
	}, nil
}

// mapGrade applies the warehouse grade substitution. Premium devices get no
// grade; their condition is irrelevant to margin billing.
func mapGrade(grading string, premium bool) string {
	if premium {
		return ""
	}
	if mapped, ok := gradeRemap[grading]; ok {
		return mapped
	}
	return grading
}

func mapBatteryFlag(batteryCondition string) string {
	if batteryCondition == "NEW" {
		return "TRUE"
	}
	return "FALSE"
}
