// Package idosell is the client for the ERP admin API.
package idosell

import "encoding/json"

// ERP order statuses the sync pipeline reads or writes.
const (
	StatusOnOrder          = "on_order"
	StatusWaitForPackaging = "wait_for_packaging"
	StatusCanceled         = "canceled"
	StatusFinished         = "finished"
)

// SizeUniversal is the only size the refurbished catalog uses.
const SizeUniversal = "uniw"

// ClientData is the buyer record on an order without an ERP account.
type ClientData struct {
	FirstName string `json:"clientFirstName"`
	LastName  string `json:"clientLastName"`
	Street    string `json:"clientStreet"`
	ZipCode   string `json:"clientZipCode"`
	City      string `json:"clientCity"`
	Country   string `json:"clientCountry"`
	Email     string `json:"clientEmail"`
	Phone     string `json:"clientPhone1"`
	LangID    string `json:"langId"`
	Nip       string `json:"clientNip,omitempty"`
	Firm      string `json:"clientFirm,omitempty"`
}

// DeliveryAddress is the shipping destination.
type DeliveryAddress struct {
	FirstName string `json:"clientDeliveryAddressFirstName"`
	LastName  string `json:"clientDeliveryAddressLastName"`
	Street    string `json:"clientDeliveryAddressStreet"`
	ZipCode   string `json:"clientDeliveryAddressZipCode"`
	City      string `json:"clientDeliveryAddressCity"`
	Country   string `json:"clientDeliveryAddressCountry"`
	CountryID string `json:"clientDeliveryAddressCountryId"`
	Phone     string `json:"clientDeliveryAddressPhone1"`
	Firm      string `json:"clientDeliveryAddressFirm,omitempty"`
}

// BundleItem is one component of a composite product.
type BundleItem struct {
	ProductID json.Number `json:"productId"`
	SizeID    string      `json:"sizeId"`
}

// ProductLine is one order line. Prices and VAT travel as strings, matching
// how the spreadsheet stores them.
type ProductLine struct {
	ProductID             string       `json:"productId"`
	SizeID                string       `json:"sizeId"`
	StockID               string       `json:"stockId"`
	Quantity              int          `json:"productQuantity"`
	QuantityOperationType string       `json:"productQuantityOperationType"`
	RetailPrice           string       `json:"productRetailPrice"`
	VAT                   string       `json:"productVat"`
	Remarks               string       `json:"remarksToProduct"`
	BundleItems           []BundleItem `json:"productBundleItems,omitempty"`
}

// Order is the order-creation document.
type Order struct {
	CurrencyID        string          `json:"currencyId"`
	BillingCurrency   string          `json:"billingCurrency"`
	PurchaseDate      string          `json:"purchaseDate"`
	StockID           string          `json:"stockId"`
	Client            ClientData      `json:"clientWithoutAccountData"`
	Delivery          DeliveryAddress `json:"clientDeliveryAddress"`
	Products          []ProductLine   `json:"products"`
	ClientNoteToOrder string          `json:"clientNoteToOrder"`
}

type createOrdersRequest struct {
	Params createOrdersParams `json:"params"`
}

type createOrdersParams struct {
	Orders []Order `json:"orders"`
}

type createOrdersResponse struct {
	Results struct {
		OrdersResults []struct {
			OrderSerialNumber json.Number `json:"orderSerialNumber"`
		} `json:"ordersResults"`
	} `json:"results"`
}

type editOrder struct {
	OrderSerialNumber json.Number `json:"orderSerialNumber"`
	OrderStatus       string      `json:"orderStatus"`
	OrderNote         string      `json:"orderNote"`
}

type editOrdersRequest struct {
	Params struct {
		Orders []editOrder `json:"orders"`
	} `json:"params"`
}

type getOrdersResponse struct {
	Results []struct {
		OrderDetails struct {
			OrderStatus string `json:"orderStatus"`
			Dispatch    struct {
				DeliveryPackageID string `json:"deliveryPackageId"`
			} `json:"dispatch"`
		} `json:"orderDetails"`
	} `json:"Results"`
}

// OrderStatus is the reconciler's view of one ERP order.
type OrderStatus struct {
	Status     string
	TrackingID string
}

type productsResponse struct {
	Results []struct {
		ProductBundleItems []struct {
			ProductID     json.Number `json:"productId"`
			IsBundleShown bool        `json:"isBundleShown"`
		} `json:"productBundleItems"`
	} `json:"results"`
}

// Bundle is a product's composite makeup. MotherID identifies the component
// the ERP displays as the bundle itself.
type Bundle struct {
	Items    []BundleItem
	MotherID string
}

type paymentSettings struct {
	SendMail bool `json:"sendMail"`
	SendSms  bool `json:"sendSms"`
}

type addPaymentRequest struct {
	Params struct {
		SourceType    string      `json:"sourceType"`
		SourceID      json.Number `json:"sourceId"`
		Value         string      `json:"value"`
		Account       string      `json:"account"`
		Type          string      `json:"type"`
		PaymentFormID int         `json:"paymentFormId"`
	} `json:"params"`
	Settings paymentSettings `json:"settings"`
}

type confirmPaymentRequest struct {
	Params struct {
		SourceType    string `json:"sourceType"`
		PaymentNumber string `json:"paymentNumber"`
	} `json:"params"`
	Settings paymentSettings `json:"settings"`
}
