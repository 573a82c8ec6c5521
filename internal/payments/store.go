package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/foodsource-dev/foodsource/internal/apperr"
)

type mongoIntentStore struct {
	intents *mongo.Collection
}

// NewMongoIntentStore persists intent records in the payment_intents
// collection.
func NewMongoIntentStore(intents *mongo.Collection) IntentStore {
	return &mongoIntentStore{intents: intents}
}

func (s *mongoIntentStore) SaveIntent(ctx context.Context, intent Intent) error {
	_, err := s.intents.InsertOne(ctx, intent)
	return err
}

func (s *mongoIntentStore) IntentByID(ctx context.Context, intentID string) (*Intent, error) {
	var intent Intent
	err := s.intents.FindOne(ctx, bson.M{"_id": intentID}).Decode(&intent)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.E(apperr.NotFound, "payments.IntentByID", fmt.Errorf("intent %s", intentID))
		}
		return nil, apperr.E(apperr.Network, "payments.IntentByID", err)
	}
	return &intent, nil
}

func (s *mongoIntentStore) MarkCompleted(ctx context.Context, intentID string) error {
	_, err := s.intents.UpdateOne(ctx,
		bson.M{"_id": intentID},
		bson.M{"$set": bson.M{"status": IntentCompleted}},
	)
	return err
}

// ExpireOlderThan flips pending intents created before the cutoff to
// expired. Completed intents are never touched.
func (s *mongoIntentStore) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.intents.UpdateMany(ctx,
		bson.M{"status": IntentPending, "created_at": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"status": IntentExpired}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
