// Package profile holds buyer and seller self-service metadata. Profile
// saves write their own fields only; the earnings mirror on a seller profile
// is read-only here and mutated exclusively by the orders earnings
// transaction.
package profile

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foodsource-dev/foodsource/internal/db"
	"github.com/foodsource-dev/foodsource/internal/money"
)

type SellerProfile struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	ImageURL    string          `json:"image_url"`
	Email       string          `json:"email"`
	Earnings    decimal.Decimal `json:"earnings"`
}

type BuyerProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GetSellerProfile returns the authenticated seller's profile.
func GetSellerProfile(c echo.Context) error {
	sellerID, ok := c.Get("user_id").(string)
	if !ok || sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var doc struct {
		Name          string `bson:"name"`
		Description   string `bson:"description"`
		Location      string `bson:"location"`
		ImageURL      string `bson:"image_url"`
		Email         string `bson:"email"`
		EarningsCents int64  `bson:"earnings_cents"`
	}
	err := db.Collection("sellers").FindOne(c.Request().Context(), bson.M{"_id": sellerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch profile"})
	}

	return c.JSON(http.StatusOK, SellerProfile{
		Name:        doc.Name,
		Description: doc.Description,
		Location:    doc.Location,
		ImageURL:    doc.ImageURL,
		Email:       doc.Email,
		Earnings:    money.FromCents(doc.EarningsCents),
	})
}

// SaveSellerProfile updates profile fields via $set. Earnings are
// deliberately absent from the update document so a profile save can never
// clobber them.
func SaveSellerProfile(c echo.Context) error {
	sellerID, ok := c.Get("user_id").(string)
	if !ok || sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req SellerProfile
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	update := bson.M{"$set": bson.M{
		"name":        req.Name,
		"description": req.Description,
		"location":    req.Location,
		"image_url":   req.ImageURL,
		"email":       req.Email,
	}}
	_, err := db.Collection("sellers").UpdateOne(c.Request().Context(),
		bson.M{"_id": sellerID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save profile"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile saved"})
}

func GetBuyerProfile(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var doc BuyerProfile
	err := db.Collection("buyers").FindOne(c.Request().Context(), bson.M{"_id": buyerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch profile"})
	}
	return c.JSON(http.StatusOK, doc)
}

func SaveBuyerProfile(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req BuyerProfile
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	_, err := db.Collection("buyers").UpdateOne(c.Request().Context(),
		bson.M{"_id": buyerID},
		bson.M{"$set": bson.M{"name": req.Name, "email": req.Email}},
		options.Update().SetUpsert(true))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save profile"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile saved"})
}
