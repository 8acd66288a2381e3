package product

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storefront.GO/api"
	catalogRepo "storefront.GO/model/repository/catalog"
	searchService "storefront.GO/service/search"
)

func init() {
	api.RegisterModule(RegisterProductRoutes)
}

func RegisterProductRoutes(apiGroup *echo.Group, d *api.Deps) {
	h := &handler{
		repo:    catalogRepo.GetProductRepository(d.DB),
		lookups: catalogRepo.NewLookupRepository(d.DB),
		search:  d.Search,
		logger:  d.Logger.Named("product"),
	}
	g := apiGroup.Group("/products")
	g.GET("", h.list)
	g.GET("/filter-counts", h.filterCounts)
	g.GET("/lookups", h.listLookups)
	g.GET("/:id", h.get)
}

type handler struct {
	repo    *catalogRepo.ProductRepository
	lookups *catalogRepo.LookupRepository
	search  *searchService.SearchService
	logger  *zap.Logger
}

// GET /api/products
func (h *handler) list(c echo.Context) error {
	q, f, err := h.parse(c)
	if err != nil {
		return api.Fail(c, http.StatusBadRequest, "INVALID_PARAMS", err.Error())
	}
	page, limit := q.paging()
	products, total, err := h.repo.List(c.Request().Context(), f, q.sort(), page, limit)
	if err != nil {
		return err
	}
	items := make([]ProductDTO, 0, len(products))
	for i := range products {
		items = append(items, ToDTO(&products[i]))
	}
	return api.OK(c, http.StatusOK, PageDTO{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	})
}

// GET /api/products/filter-counts – sort and paging parameters are ignored.
func (h *handler) filterCounts(c echo.Context) error {
	_, f, err := h.parse(c)
	if err != nil {
		return api.Fail(c, http.StatusBadRequest, "INVALID_PARAMS", err.Error())
	}
	counts, err := h.repo.FacetCounts(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, counts)
}

// GET /api/products/lookups – names for the id facets.
func (h *handler) listLookups(c echo.Context) error {
	all, err := h.lookups.All(c.Request().Context())
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, all)
}

// GET /api/products/:id
func (h *handler) get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return api.Fail(c, http.StatusBadRequest, "INVALID_PARAMS", "invalid product id")
	}
	p, err := h.repo.FindByID(c.Request().Context(), uint(id))
	if errors.Is(err, catalogRepo.ErrNotFound) {
		return api.Fail(c, http.StatusNotFound, "NOT_FOUND", "product not found")
	}
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, ToDTO(p))
}

func (h *handler) parse(c echo.Context) (listQuery, catalogRepo.ProductFilter, error) {
	q, err := decodeQuery(c.QueryParams())
	if err != nil {
		return q, catalogRepo.ProductFilter{}, err
	}
	f, err := q.filter()
	if err != nil {
		return q, f, err
	}
	h.applySearch(c.Request().Context(), &f)
	return q, f, nil
}

// applySearch swaps the text search for Elasticsearch hits when the index is
// available. On failure the database LIKE search is kept.
func (h *handler) applySearch(ctx context.Context, f *catalogRepo.ProductFilter) {
	if f.Search == "" || !h.search.Enabled() {
		return
	}
	ids, err := h.search.SearchIDs(ctx, f.Search)
	if err != nil {
		h.logger.Warn("elasticsearch query failed, using database search", zap.Error(err))
		return
	}
	f.IDs = ids
	if f.IDs == nil {
		f.IDs = []uint{}
	}
	f.Search = ""
}
