package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/foodsource-dev/foodsource/internal/apperr"
)

// GetAllSellers is the public feed: every seller with top products.
func GetAllSellers(c echo.Context) error {
	sellers, err := AllSellers(c.Request().Context())
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "failed to fetch sellers"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sellers": sellers})
}

func GetSeller(c echo.Context) error {
	seller, err := SellerByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "seller not found"})
	}
	return c.JSON(http.StatusOK, seller)
}

func GetSellerProducts(c echo.Context) error {
	products, err := ProductsOf(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "failed to fetch products"})
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// CreateProduct lets an authenticated seller add a product to their list.
func CreateProduct(c echo.Context) error {
	sellerID, ok := c.Get("user_id").(string)
	if !ok || sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var p Product
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	id, err := AddProduct(c.Request().Context(), sellerID, p)
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": "failed to add product"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"product_id": id})
}
