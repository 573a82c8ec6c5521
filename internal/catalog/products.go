package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/foodsource-dev/foodsource/internal/apperr"
	"github.com/foodsource-dev/foodsource/internal/db"
	"github.com/foodsource-dev/foodsource/internal/money"
)

// ProductsOf lists every product a seller offers.
func ProductsOf(ctx context.Context, sellerID string) ([]Product, error) {
	cursor, err := db.Collection("products").Find(ctx, bson.M{"seller_id": sellerID})
	if err != nil {
		return nil, apperr.E(apperr.Network, "catalog.ProductsOf", err)
	}
	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperr.E(apperr.Network, "catalog.ProductsOf", err)
	}
	products := make([]Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.product())
	}
	return products, nil
}

// AddProduct stores a new product for a seller. Image bytes are handled by
// the upload collaborator; only the resulting URL is recorded here.
func AddProduct(ctx context.Context, sellerID string, p Product) (string, error) {
	if p.Name == "" || p.Price.IsNegative() {
		return "", apperr.E(apperr.Validation, "catalog.AddProduct", nil)
	}
	doc := productDoc{
		ID:          uuid.New().String(),
		SellerID:    sellerID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  money.Cents(p.Price),
		ImageURL:    p.ImageURL,
	}
	if _, err := db.Collection("products").InsertOne(ctx, doc); err != nil {
		return "", apperr.E(apperr.Network, "catalog.AddProduct", err)
	}
	return doc.ID, nil
}
