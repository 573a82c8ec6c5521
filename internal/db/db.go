package db

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	client   *mongo.Client
	database *mongo.Database
)

// Init connects to MongoDB and keeps a package-wide handle.
func Init() {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	name := os.Getenv("MONGO_DB")
	if name == "" {
		name = "foodsource"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Unable to connect to MongoDB: %v", err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("Unable to ping MongoDB: %v", err)
	}

	database = client.Database(name)
	log.Println("Connected to MongoDB successfully")
}

// Initialized reports whether Init has connected a database handle.
func Initialized() bool {
	return database != nil
}

// Client exposes the underlying client for session-based transactions.
func Client() *mongo.Client {
	return client
}

// Collection returns a handle for the named collection.
func Collection(name string) *mongo.Collection {
	return database.Collection(name)
}

// Ready reports whether the database is reachable.
func Ready(ctx context.Context) bool {
	if client == nil {
		return false
	}
	return client.Ping(ctx, readpref.Primary()) == nil
}
