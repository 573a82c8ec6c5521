package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foodsource-dev/foodsource/internal/apperr"
)

// Store is the order and earnings persistence boundary. AddEarnings is the
// only write path for seller earnings anywhere in the system.
type Store interface {
	InsertOrder(ctx context.Context, order *Order) error
	OrderByID(ctx context.Context, orderID string) (*Order, error)
	OrdersByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	OrdersBySeller(ctx context.Context, sellerID string) ([]Order, error)
	// AddEarnings performs the read-modify-write inside a conflict-detecting
	// transaction; concurrent increments for the same seller must never be
	// lost.
	AddEarnings(ctx context.Context, sellerID string, amountCents int64) error
	SetTracking(ctx context.Context, orderID, trackingNumber, carrierCode string) error
	Tracking(ctx context.Context, orderID string) (trackingNumber, carrierCode string, err error)
}

type mongoStore struct {
	client  *mongo.Client
	orders  *mongo.Collection
	sellers *mongo.Collection
}

func NewMongoStore(client *mongo.Client, orders, sellers *mongo.Collection) Store {
	return &mongoStore{client: client, orders: orders, sellers: sellers}
}

func (s *mongoStore) InsertOrder(ctx context.Context, order *Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.Date = time.Now()
	if _, err := s.orders.InsertOne(ctx, order); err != nil {
		return apperr.E(apperr.Network, "orders.InsertOrder", err)
	}
	return nil
}

func (s *mongoStore) OrderByID(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	err := s.orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.E(apperr.NotFound, "orders.OrderByID", fmt.Errorf("order %s", orderID))
		}
		return nil, apperr.E(apperr.Network, "orders.OrderByID", err)
	}
	return &order, nil
}

func (s *mongoStore) listOrders(ctx context.Context, filter bson.M) ([]Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.E(apperr.Network, "orders.list", err)
	}
	var list []Order
	if err := cursor.All(ctx, &list); err != nil {
		return nil, apperr.E(apperr.Network, "orders.list", err)
	}
	return list, nil
}

func (s *mongoStore) OrdersByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	return s.listOrders(ctx, bson.M{"buyer_id": buyerID})
}

func (s *mongoStore) OrdersBySeller(ctx context.Context, sellerID string) ([]Order, error) {
	return s.listOrders(ctx, bson.M{"seller_id": sellerID})
}

// AddEarnings reads the current earnings and writes back the sum inside a
// session transaction. The driver retries the callback when a concurrent
// write conflicts, so increments cannot be lost; a plain read-then-write
// would lose them. If the retry budget runs out the conflict surfaces as
// ConflictExhausted.
func (s *mongoStore) AddEarnings(ctx context.Context, sellerID string, amountCents int64) error {
	session, err := s.client.StartSession()
	if err != nil {
		return apperr.E(apperr.Network, "orders.AddEarnings", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var doc struct {
			EarningsCents int64 `bson:"earnings_cents"`
		}
		err := s.sellers.FindOne(sc, bson.M{"_id": sellerID}).Decode(&doc)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperr.E(apperr.NotFound, "orders.AddEarnings", fmt.Errorf("seller %s", sellerID))
			}
			return nil, err
		}
		newEarnings := doc.EarningsCents + amountCents
		_, err = s.sellers.UpdateOne(sc,
			bson.M{"_id": sellerID},
			bson.M{"$set": bson.M{"earnings_cents": newEarnings}},
		)
		return nil, err
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return err
		}
		return apperr.E(txnErrKind(err), "orders.AddEarnings", err)
	}
	return nil
}

// txnErrKind separates transport failures, which a caller may simply retry,
// from genuine transaction retry exhaustion.
func txnErrKind(err error) apperr.Kind {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return apperr.Network
	}
	return apperr.ConflictExhausted
}

func (s *mongoStore) SetTracking(ctx context.Context, orderID, trackingNumber, carrierCode string) error {
	res, err := s.orders.UpdateOne(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"tracking_number": trackingNumber, "carrier_code": carrierCode}},
	)
	if err != nil {
		return apperr.E(apperr.Network, "orders.SetTracking", err)
	}
	if res.MatchedCount == 0 {
		return apperr.E(apperr.NotFound, "orders.SetTracking", fmt.Errorf("order %s", orderID))
	}
	return nil
}

func (s *mongoStore) Tracking(ctx context.Context, orderID string) (string, string, error) {
	order, err := s.OrderByID(ctx, orderID)
	if err != nil {
		return "", "", err
	}
	return order.TrackingNumber, order.CarrierCode, nil
}
