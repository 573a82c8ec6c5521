package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/foodsource-dev/foodsource/internal/money"
)

// Product identity is the id alone: two values with the same id are
// interchangeable as cart keys even if other fields differ.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
}

type Seller struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Rating          float64         `json:"rating,omitempty"`
	Products        []Product       `json:"products,omitempty"`
	Location        string          `json:"location"`
	ImageURL        string          `json:"image_url"`
	Earnings        decimal.Decimal `json:"earnings"`
	StripeAccountID string          `json:"-"`
}

type productDoc struct {
	ID          string `bson:"_id"`
	SellerID    string `bson:"seller_id"`
	Name        string `bson:"name"`
	Description string `bson:"description"`
	PriceCents  int64  `bson:"price_cents"`
	ImageURL    string `bson:"image_url"`
}

type sellerDoc struct {
	ID              string  `bson:"_id"`
	Name            string  `bson:"name"`
	Description     string  `bson:"description"`
	Rating          float64 `bson:"rating,omitempty"`
	Location        string  `bson:"location"`
	ImageURL        string  `bson:"image_url"`
	EarningsCents   int64   `bson:"earnings_cents"`
	StripeAccountID string  `bson:"stripe_account_id,omitempty"`
}

func (d productDoc) product() Product {
	return Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       money.FromCents(d.PriceCents),
		ImageURL:    d.ImageURL,
	}
}

func (d sellerDoc) seller() Seller {
	return Seller{
		ID:              d.ID,
		Name:            d.Name,
		Description:     d.Description,
		Rating:          d.Rating,
		Location:        d.Location,
		ImageURL:        d.ImageURL,
		Earnings:        money.FromCents(d.EarningsCents),
		StripeAccountID: d.StripeAccountID,
	}
}
