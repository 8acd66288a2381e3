package wishlist

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
	productApi "storefront.GO/api/product"
	coreAuth "storefront.GO/core/auth"
	wishlistEntity "storefront.GO/model/entity/wishlist"
	catalogRepo "storefront.GO/model/repository/catalog"
	wishlistRepo "storefront.GO/model/repository/wishlist"
)

func init() {
	api.RegisterModule(RegisterWishlistRoutes)
}

type itemDTO struct {
	ProductID uint                   `json:"productId"`
	AddedAt   time.Time              `json:"addedAt"`
	Product   *productApi.ProductDTO `json:"product,omitempty"`
}

func toDTO(it *wishlistEntity.WishlistItem) itemDTO {
	out := itemDTO{ProductID: it.ProductID, AddedAt: it.AddedAt}
	if it.Product != nil {
		p := productApi.ToDTO(it.Product)
		out.Product = &p
	}
	return out
}

// RegisterWishlistRoutes mounts the signed-in customer's wishlist. Every route
// is behind the session middleware.
func RegisterWishlistRoutes(apiGroup *echo.Group, d *api.Deps) {
	repo := wishlistRepo.NewWishlistRepository(d.DB)
	products := catalogRepo.GetProductRepository(d.DB)
	g := apiGroup.Group("/wishlist")

	g.GET("", func(c echo.Context) error {
		id, _ := coreAuth.CustomerID(c)
		items, err := repo.List(c.Request().Context(), id)
		if err != nil {
			return err
		}
		out := make([]itemDTO, 0, len(items))
		for i := range items {
			out = append(out, toDTO(&items[i]))
		}
		return api.OK(c, http.StatusOK, out)
	})

	g.POST("", func(c echo.Context) error {
		id, _ := coreAuth.CustomerID(c)
		var body struct {
			ProductID uint `json:"productId"`
		}
		if err := c.Bind(&body); err != nil || body.ProductID == 0 {
			return api.Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "productId is required")
		}
		ctx := c.Request().Context()
		if _, err := products.FindByID(ctx, body.ProductID); err != nil {
			if errors.Is(err, catalogRepo.ErrNotFound) {
				return api.Fail(c, http.StatusNotFound, "NOT_FOUND", "product not found")
			}
			return err
		}
		item, err := repo.Add(ctx, id, body.ProductID)
		if err != nil {
			return err
		}
		return api.OK(c, http.StatusCreated, toDTO(item))
	})

	g.DELETE("/:productId", func(c echo.Context) error {
		id, _ := coreAuth.CustomerID(c)
		productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
		if err != nil || productID == 0 {
			return api.Fail(c, http.StatusBadRequest, "INVALID_PARAMS", "invalid product id")
		}
		if err := repo.Remove(c.Request().Context(), id, uint(productID)); err != nil {
			return err
		}
		return api.NoContent(c)
	})
}
