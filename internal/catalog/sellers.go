package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/foodsource-dev/foodsource/internal/apperr"
	"github.com/foodsource-dev/foodsource/internal/db"
)

const topProductsPerSeller = 3

// SellerByID returns the catalog record, including the payment sub-account
// id and the earnings mirror.
func SellerByID(ctx context.Context, sellerID string) (*Seller, error) {
	var doc sellerDoc
	err := db.Collection("sellers").FindOne(ctx, bson.M{"_id": sellerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.E(apperr.NotFound, "catalog.SellerByID", fmt.Errorf("seller %s", sellerID))
		}
		return nil, apperr.E(apperr.Network, "catalog.SellerByID", err)
	}
	s := doc.seller()
	return &s, nil
}

// StripeAccountID resolves the seller's processor sub-account. A seller
// without one has not completed onboarding and cannot receive payments.
func StripeAccountID(ctx context.Context, sellerID string) (string, error) {
	s, err := SellerByID(ctx, sellerID)
	if err != nil {
		return "", err
	}
	if s.StripeAccountID == "" {
		return "", apperr.E(apperr.NotFound, "catalog.StripeAccountID",
			fmt.Errorf("seller %s not onboarded", sellerID))
	}
	return s.StripeAccountID, nil
}

// AllSellers lists every seller with their top products attached. The
// per-seller product fetches fan out on an errgroup and join before the
// result is assembled, keyed by position so no completion counting is needed.
func AllSellers(ctx context.Context) ([]Seller, error) {
	cursor, err := db.Collection("sellers").Find(ctx, bson.M{})
	if err != nil {
		return nil, apperr.E(apperr.Network, "catalog.AllSellers", err)
	}
	var docs []sellerDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperr.E(apperr.Network, "catalog.AllSellers", err)
	}

	sellers := make([]Seller, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			products, err := topProducts(gctx, doc.ID)
			if err != nil {
				return err
			}
			s := doc.seller()
			s.Products = products
			sellers[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sellers, nil
}

func topProducts(ctx context.Context, sellerID string) ([]Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "price_cents", Value: -1}}).
		SetLimit(topProductsPerSeller)
	cursor, err := db.Collection("products").Find(ctx, bson.M{"seller_id": sellerID}, opts)
	if err != nil {
		return nil, apperr.E(apperr.Network, "catalog.topProducts", err)
	}
	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperr.E(apperr.Network, "catalog.topProducts", err)
	}
	products := make([]Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.product())
	}
	return products, nil
}
