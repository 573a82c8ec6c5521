package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/foodsource-dev/foodsource/internal/alerts"
	"github.com/foodsource-dev/foodsource/internal/cart"
	"github.com/foodsource-dev/foodsource/internal/catalog"
	"github.com/foodsource-dev/foodsource/internal/db"
	mware "github.com/foodsource-dev/foodsource/internal/middleware"
	"github.com/foodsource-dev/foodsource/internal/orders"
	"github.com/foodsource-dev/foodsource/internal/payments"
	"github.com/foodsource-dev/foodsource/internal/profile"
	"github.com/foodsource-dev/foodsource/internal/registry"
	"github.com/foodsource-dev/foodsource/internal/shipping"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize subsystems
	db.Init()
	alerts.Init()
	defer alerts.Close()

	gateway, err := payments.GatewayFromEnv()
	if err != nil {
		log.Fatalf("init payments: %v", err)
	}

	// Wiring
	carts := cart.NewRegistry()
	flows := payments.NewFlows()
	intentStore := payments.NewMongoIntentStore(db.Collection("payment_intents"))
	broker := payments.NewBroker(catalog.StripeAccountID, gateway, intentStore, flows)

	orderStore := orders.NewMongoStore(db.Client(), db.Collection("orders"), db.Collection("sellers"))
	registrar := orders.NewRegistrar(orderStore)
	tracker := shipping.NewTrackerFromEnv()

	cartH := cart.NewHandlers(carts)
	orderH := orders.NewHandlers(carts, broker, flows, registrar, orderStore)
	trackingH := orders.NewTrackingHandlers(orderStore, tracker)
	onboardingH := payments.NewOnboardingHandlers(gateway)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Health and readiness
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "foodsource"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if !db.Ready(context.Background()) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Public catalog browsing
	e.GET("/catalog/sellers", catalog.GetAllSellers)
	e.GET("/catalog/sellers/:id", catalog.GetSeller)
	e.GET("/catalog/sellers/:id/products", catalog.GetSellerProducts)

	// Authenticated routes
	g := e.Group("")
	g.Use(mware.JWTMiddleware)

	// Cart (buyer-local)
	g.GET("/cart", cartH.Get)
	g.POST("/cart/items", cartH.Add)
	g.DELETE("/cart/items", cartH.Remove)
	g.PUT("/cart/items/quantity", cartH.SetQuantity)
	g.POST("/cart/items/increase", cartH.Increase)
	g.POST("/cart/items/decrease", cartH.Decrease)
	g.DELETE("/cart", cartH.Clear)

	// Checkout
	g.POST("/checkout/intent", orderH.CreateIntent)
	g.POST("/checkout/complete", orderH.Complete)
	g.GET("/orders", orderH.GetBuyerOrders)
	g.POST("/orders/:id/earnings/retry", orderH.RetryEarnings)
	g.GET("/orders/:id/tracking", trackingH.GetTracking)

	// Buyer profile
	g.GET("/buyer/profile", profile.GetBuyerProfile)
	g.PUT("/buyer/profile", profile.SaveBuyerProfile)

	// Seller-side
	g.GET("/seller/orders", orderH.GetSellerOrders, mware.RequireRoles("seller"))
	g.POST("/orders/:id/tracking", trackingH.SetTracking, mware.RequireRoles("seller"))
	g.POST("/catalog/products", catalog.CreateProduct, mware.RequireRoles("seller"))
	g.GET("/seller/profile", profile.GetSellerProfile, mware.RequireRoles("seller"))
	g.PUT("/seller/profile", profile.SaveSellerProfile, mware.RequireRoles("seller"))

	// Seller payment onboarding
	g.POST("/payments/accounts", onboardingH.CreateAccount, mware.RequireRoles("seller"))
	g.POST("/payments/account-links", onboardingH.CreateAccountLink, mware.RequireRoles("seller"))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	deregister, err := registry.Register(port)
	if err != nil {
		log.Printf("consul registration skipped: %v", err)
		deregister = func() {}
	}
	defer deregister()

	if err := e.Start(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
