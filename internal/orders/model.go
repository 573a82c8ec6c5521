package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/foodsource-dev/foodsource/internal/money"
)

// LineItem is one purchased product with the quantity bought.
type LineItem struct {
	ProductID  string `bson:"id" json:"id"`
	Name       string `bson:"name" json:"name"`
	PriceCents int64  `bson:"price_cents" json:"price_cents"`
	Quantity   int    `bson:"quantity" json:"quantity"`
	ImageURL   string `bson:"image_url" json:"image_url"`
}

func (li LineItem) Price() decimal.Decimal {
	return money.FromCents(li.PriceCents)
}

// Order is immutable once registered, except for the tracking fields a
// seller may set per shipment (last write wins).
type Order struct {
	ID              string     `bson:"_id" json:"id"`
	BuyerID         string     `bson:"buyer_id" json:"buyer_id"`
	SellerID        string     `bson:"seller_id" json:"seller_id"`
	SellerName      string     `bson:"seller_name" json:"seller_name"`
	Products        []LineItem `bson:"products" json:"products"`
	TotalCents      int64      `bson:"total_cents" json:"total_cents"`
	ShippingAddress string     `bson:"shipping_address" json:"shipping_address"`
	Date            time.Time  `bson:"date" json:"date"`
	TrackingNumber  string     `bson:"tracking_number,omitempty" json:"tracking_number,omitempty"`
	CarrierCode     string     `bson:"carrier_code,omitempty" json:"carrier_code,omitempty"`
}

func (o *Order) TotalAmount() decimal.Decimal {
	return money.FromCents(o.TotalCents)
}

// NewOrder is the registrar input; id and date are store-assigned.
type NewOrder struct {
	BuyerID         string
	SellerID        string
	SellerName      string
	Products        []LineItem
	TotalCents      int64
	ShippingAddress string
}

// Known carrier codes. The field stays an open string for carriers added
// later; these are just the ones the seller UI offers.
const (
	CarrierUPS   = "ups"
	CarrierUSPS  = "usps"
	CarrierFedEx = "fedex"
	CarrierDHL   = "dhl"
)
