// Package refurbed is the client for the marketplace merchant API.
package refurbed

// Item states the sync worker requests on the marketplace side.
const (
	ItemStateAccepted = "ACCEPTED"
	ItemStateShipped  = "SHIPPED"
)

// Order states used in list filters and recovery decisions.
const (
	OrderStateNew       = "NEW"
	OrderStateShipped   = "SHIPPED"
	OrderStateCancelled = "CANCELLED"
	OrderStateReturned  = "RETURNED"
)

type Offer struct {
	Grading          string `json:"offer_grading"`
	BatteryCondition string `json:"battery_condition"`
}

type OrderItem struct {
	ID           string `json:"id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	TotalCharged string `json:"total_charged"`
	Offer        Offer  `json:"offer_data"`
}

type Address struct {
	FirstName    string `json:"first_name"`
	FamilyName   string `json:"family_name"`
	PhoneNumber  string `json:"phone_number"`
	StreetName   string `json:"street_name"`
	HouseNo      string `json:"house_no"`
	Supplement   string `json:"supplement"`
	PostCode     string `json:"post_code"`
	Town         string `json:"town"`
	CountryCode  string `json:"country_code"`
	CompanyName  string `json:"company_name"`
	CompanyVatin string `json:"company_vatin"`
}

type Order struct {
	ID            string      `json:"id"`
	State         string      `json:"state"`
	ReleasedAt    string      `json:"released_at"`
	CustomerEmail string      `json:"customer_email"`
	Currency      string      `json:"settlement_currency_code"`
	TotalPaid     string      `json:"settlement_total_paid"`
	TotalCharged  string      `json:"total_charged"`
	Items         []OrderItem `json:"items"`
	Shipping      Address     `json:"shipping_address"`
	Invoice       Address     `json:"invoice_address"`
}

// HasTaxID reports whether the buyer supplied a company VAT number.
func (o *Order) HasTaxID() bool {
	return o.Invoice.CompanyVatin != ""
}

// Wire shapes for the merchant OrderService.

type listFilter struct {
	State *stateFilter `json:"state,omitempty"`
	ID    *idFilter    `json:"id,omitempty"`
}

type stateFilter struct {
	NoneOf []string `json:"none_of,omitempty"`
}

type idFilter struct {
	AnyOf []string `json:"any_of,omitempty"`
}

type pagination struct {
	Limit         int    `json:"limit"`
	StartingAfter string `json:"starting_after,omitempty"`
}

type sortInstruction struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

type listOrdersRequest struct {
	Filter     *listFilter      `json:"filter,omitempty"`
	Pagination *pagination      `json:"pagination,omitempty"`
	Sort       *sortInstruction `json:"sort,omitempty"`
}

type listOrdersResponse struct {
	Orders []Order `json:"orders"`
}

type updateItemStateRequest struct {
	ID                string `json:"id"`
	State             string `json:"state"`
	ParcelTrackingURL string `json:"parcel_tracking_url,omitempty"`
}
