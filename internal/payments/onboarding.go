package payments

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/foodsource-dev/foodsource/internal/apperr"
	"github.com/foodsource-dev/foodsource/internal/db"
)

// OnboardingHandlers wrap the seller onboarding endpoints: account creation
// and the hosted onboarding link the app opens in an embedded browser.
type OnboardingHandlers struct {
	gateway *Gateway
}

func NewOnboardingHandlers(gateway *Gateway) *OnboardingHandlers {
	return &OnboardingHandlers{gateway: gateway}
}

// CreateAccount provisions a sub-account for the authenticated seller and
// links it on the seller document.
func (h *OnboardingHandlers) CreateAccount(c echo.Context) error {
	sellerID, ok := c.Get("user_id").(string)
	if !ok || sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	accountID, err := h.gateway.CreateAccount(c.Request().Context(), req.Email)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "could not create payment account"})
	}

	_, err = db.Collection("sellers").UpdateOne(c.Request().Context(),
		bson.M{"_id": sellerID},
		bson.M{"$set": bson.M{"stripe_account_id": accountID}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not link payment account"})
	}

	return c.JSON(http.StatusOK, echo.Map{"account_id": accountID})
}

// CreateAccountLink returns the hosted onboarding URL for a sub-account.
func (h *OnboardingHandlers) CreateAccountLink(c echo.Context) error {
	var req struct {
		AccountID string `json:"account_id"`
	}
	if err := c.Bind(&req); err != nil || req.AccountID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account_id required"})
	}

	url, err := h.gateway.CreateAccountLink(c.Request().Context(), req.AccountID)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "could not create onboarding link"})
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}
