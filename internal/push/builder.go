// Package push turns accepted spreadsheet rows into ERP orders and keeps
// the marketplace informed about them.
package push

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vedion/refurbed-sync/internal/idosell"
	"github.com/vedion/refurbed-sync/internal/refurbed"
	"github.com/vedion/refurbed-sync/internal/sheet"
	"github.com/vedion/refurbed-sync/internal/vat"
	"github.com/vedion/refurbed-sync/pkg/errors"
)

// countryNames maps ISO country codes to the Polish names the ERP expects
// on its address fields.
var countryNames = map[string]string{
	"AT": "Austria",
	"BE": "Belgia",
	"BG": "Bułgaria",
	"HR": "Chorwacja",
	"CY": "Cypr",
	"CZ": "Czechy",
	"DK": "Dania",
	"EE": "Estonia",
	"FI": "Finlandia",
	"FR": "Francja",
	"GR": "Grecja",
	"DE": "Niemcy",
	"ES": "Hiszpania",
	"NL": "Holandia",
	"IE": "Irlandia",
	"LU": "Luksemburg",
	"LT": "Litwa",
	"LV": "Łotwa",
	"MT": "Malta",
	"PL": "Polska",
	"PT": "Portugalia",
	"RO": "Rumunia",
	"SK": "Słowacja",
	"SI": "Słowenia",
	"SE": "Szwecja",
	"HU": "Węgry",
	"IT": "Włochy",
}

// langIDs maps country codes to ERP customer language ids.
var langIDs = map[string]string{
	"PL": "pol",
	"EN": "eng",
	"DE": "ger",
	"FR": "fre",
	"IT": "ita",
	"ES": "spa",
}

const defaultLangID = "eng"

// BuildOrder assembles the ERP order document for one checked row. The
// marketplace order detail and the sheet row must describe the same order;
// bundle carries the composite makeup of the kit the operator assigned.
//
// Orders whose settlement total differs from the single item's total are
// rejected here, before anything reaches the ERP: such orders carry
// shipping surcharges or multiple items and need a human decision.
func BuildOrder(row sheet.OrderRow, order refurbed.Order, bundle idosell.Bundle) (idosell.Order, error) {
	if len(order.Items) == 0 {
		return idosell.Order{}, errors.New(errors.CodeDataShape, fmt.Sprintf("order %s has no items", order.ID))
	}
	item := order.Items[0]
	orderTotal, err := decimal.NewFromString(order.TotalCharged)
	if err != nil {
		return idosell.Order{}, errors.New(errors.CodeDataShape, fmt.Sprintf("order %s has unreadable total %q", order.ID, order.TotalCharged))
	}
	itemTotal, err := decimal.NewFromString(item.TotalCharged)
	if err != nil {
		return idosell.Order{}, errors.New(errors.CodeDataShape, fmt.Sprintf("order %s has unreadable item total %q", order.ID, item.TotalCharged))
	}
	if !orderTotal.Equal(itemTotal) {
		return idosell.Order{}, errors.New(errors.CodeValidation, fmt.Sprintf(
			"order %s totals mismatch: order charged %s, item charged %s",
			order.ID, order.TotalCharged, item.TotalCharged))
	}

	// Billing goes to the invoice address; the shipping address only ever
	// fills the delivery record. The two differ whenever a buyer invoices
	// one party and ships to another.
	invoice := order.Invoice
	shipping := order.Shipping

	client := idosell.ClientData{
		FirstName: invoice.FirstName,
		LastName:  invoice.FamilyName,
		Street:    joinStreet(invoice),
		ZipCode:   invoice.PostCode,
		City:      invoice.Town,
		Country:   countryNames[invoice.CountryCode],
		Email:     order.CustomerEmail,
		Phone:     invoice.PhoneNumber,
		LangID:    langID(invoice.CountryCode),
	}
	if order.HasTaxID() {
		client.Nip = invoice.CompanyVatin
		client.Firm = invoice.CompanyName
	}

	delivery := idosell.DeliveryAddress{
		FirstName: shipping.FirstName,
		LastName:  shipping.FamilyName,
		Street:    joinStreet(shipping),
		ZipCode:   shipping.PostCode,
		City:      shipping.Town,
		Country:   countryNames[shipping.CountryCode],
		CountryID: shipping.CountryCode,
		Phone:     shipping.PhoneNumber,
		Firm:      shipping.CompanyName,
	}

	premium := row.VATRate == vat.SheetPremium
	line := idosell.ProductLine{
		ProductID:             row.KitID,
		SizeID:                idosell.SizeUniversal,
		StockID:               stockID(row.Warehouse),
		Quantity:              1,
		QuantityOperationType: "add",
		RetailPrice:           row.TotalPaid,
		VAT:                   productVAT(row.VATRate),
		Remarks:               remarks(row, item.Name, bundle, premium),
		BundleItems:           bundle.Items,
	}

	return idosell.Order{
		CurrencyID:        order.Currency,
		BillingCurrency:   order.Currency,
		PurchaseDate:      refurbed.ReleasedDate(order.ReleasedAt),
		StockID:           stockID(row.Warehouse),
		Client:            client,
		Delivery:          delivery,
		Products:          []idosell.ProductLine{line},
		ClientNoteToOrder: fmt.Sprintf("[refurbed-api-id:%s]", order.ID),
	}, nil
}

// remarks composes the warehouse instructions printed on the order line.
// Premium devices only ever need a battery note; laptops get the full
// breakdown the packers work from.
func remarks(row sheet.OrderRow, itemName string, bundle idosell.Bundle, premium bool) string {
	battery := strings.EqualFold(row.BatteryFlag, "TRUE")
	if premium {
		if battery {
			return "Wymiana baterii na 100%"
		}
		return ""
	}

	var b strings.Builder
	if bundle.MotherID != "" {
		fmt.Fprintf(&b, "ID matki: %s\n", bundle.MotherID)
	}
	if row.Grade != "" {
		fmt.Fprintf(&b, "Klasa %s\n", row.Grade)
	}
	if capacity := diskCapacity(itemName); capacity != "" {
		fmt.Fprintf(&b, "Dysk: %s\n", capacity)
	}
	if layout := keyboardLayout(itemName); layout != "" {
		if strings.EqualFold(row.KeyboardFlag, "TRUE") {
			fmt.Fprintf(&b, "Wymiana klawiatury %s\n", layout)
		} else {
			fmt.Fprintf(&b, "Klawiatura: %s\n", layout)
		}
	}
	if battery {
		b.WriteString("Wymiana baterii\n")
	}
	return b.String()
}

// diskCapacity extracts the storage size from a pipe-delimited listing
// title, e.g. "MacBook Pro 14 | 16GB | 512GB SSD | QWERTZ" yields "512GB".
func diskCapacity(itemName string) string {
	for _, part := range strings.Split(itemName, "|") {
		part = strings.TrimSpace(part)
		for _, kind := range []string{"SSD", "HDD"} {
			if idx := strings.Index(part, kind); idx >= 0 {
				return strings.TrimSpace(part[:idx])
			}
		}
	}
	return ""
}

// keyboardLayout returns the last segment of a pipe-delimited listing title.
func keyboardLayout(itemName string) string {
	parts := strings.Split(itemName, "|")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-1])
}

// stockID converts a sheet warehouse label like "M4" to the ERP stock id.
func stockID(warehouse string) string {
	return strings.TrimPrefix(strings.TrimSpace(warehouse), "M")
}

// productVAT maps the sheet VAT cell to the ERP field. The premium
// sentinel means the margin scheme applies and the ERP gets zero.
func productVAT(rate string) string {
	if rate == vat.SheetPremium {
		return "0"
	}
	return rate
}

func joinStreet(addr refurbed.Address) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{addr.StreetName, addr.HouseNo, addr.Supplement} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func langID(countryCode string) string {
	if id, ok := langIDs[strings.ToUpper(strings.TrimSpace(countryCode))]; ok {
		return id
	}
	return defaultLangID
}
