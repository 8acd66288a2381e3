package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogEntity "storefront.GO/model/entity/catalog"
)

// MatchMode decides whether a product needs any or all selected values of a
// multi-valued facet.
type MatchMode string

const (
	MatchAny MatchMode = "any"
	MatchAll MatchMode = "all"
)

// Facet names, as returned by FacetCounts.
const (
	FacetGender          = "gender"
	FacetConcentration   = "concentration"
	FacetFragranceFamily = "fragranceFamilyId"
	FacetLongevity       = "longevityId"
	FacetSillage         = "sillageId"
	FacetSeasons         = "seasonIds"
	FacetOccasions       = "occasionIds"
)

const (
	seasonJoin   = "catalog_product_season"
	occasionJoin = "catalog_product_occasion"
)

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = errors.New("catalog: product not found")

// ProductFilter is a catalog selection. Zero values filter nothing. IDs, when
// non-nil, restricts results to those products (e.g. full-text hits).
type ProductFilter struct {
	Search            string
	IDs               []uint
	Gender            string
	Concentration     string
	MinPrice          *decimal.Decimal
	MaxPrice          *decimal.Decimal
	MinRating         *float64
	MaxRating         *float64
	FragranceFamilyID uint
	LongevityID       uint
	SillageID         uint
	SeasonIDs         []uint
	SeasonMatch       MatchMode
	OccasionIDs       []uint
	OccasionMatch     MatchMode
}

// Sort orders a listing. By is one of name, price, rating, newest.
type Sort struct {
	By    string
	Order string
}

type ProductRepository struct {
	db *gorm.DB
}

var (
	repoMu    sync.Mutex
	repoCache = make(map[*gorm.DB]*ProductRepository)
)

// GetProductRepository returns one repository per DB handle.
func GetProductRepository(db *gorm.DB) *ProductRepository {
	repoMu.Lock()
	defer repoMu.Unlock()
	if r, ok := repoCache[db]; ok {
		return r
	}
	r := NewProductRepository(db)
	repoCache[db] = r
	return r
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns one page of products matching f and the total match count.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter, sort Sort, page, limit int) ([]catalogEntity.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 24
	}

	var total int64
	if err := r.filtered(ctx, f, "").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("catalog: count products: %w", err)
	}

	var products []catalogEntity.Product
	err := r.filtered(ctx, f, "").
		Preload("Seasons").
		Preload("Occasions").
		Order(orderBy(sort)).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "catalog_product", Name: "product_id"}}).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list products: %w", err)
	}
	return products, total, nil
}

// FindByID loads one product with its seasons and occasions.
func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*catalogEntity.Product, error) {
	var p catalogEntity.Product
	err := r.db.WithContext(ctx).Preload("Seasons").Preload("Occasions").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FacetCounts counts matching products per facet value. Each facet is counted
// with its own selection left out, so the counts show what choosing another
// value of that facet would yield.
func (r *ProductRepository) FacetCounts(ctx context.Context, f ProductFilter) (map[string]map[string]int, error) {
	type facet struct {
		name   string
		column string
		join   string
	}
	facets := []facet{
		{FacetGender, "gender", ""},
		{FacetConcentration, "concentration", ""},
		{FacetFragranceFamily, "fragrance_family_id", ""},
		{FacetLongevity, "longevity_id", ""},
		{FacetSillage, "sillage_id", ""},
		{FacetSeasons, "season_id", seasonJoin},
		{FacetOccasions, "occasion_id", occasionJoin},
	}

	var mu sync.Mutex
	out := make(map[string]map[string]int, len(facets))
	g, gctx := errgroup.WithContext(ctx)
	for _, fc := range facets {
		g.Go(func() error {
			counts, err := r.countFacet(gctx, f, fc.name, fc.column, fc.join)
			if err != nil {
				return fmt.Errorf("catalog: count %s: %w", fc.name, err)
			}
			mu.Lock()
			out[fc.name] = counts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductRepository) countFacet(ctx context.Context, f ProductFilter, name, column, join string) (map[string]int, error) {
	q := r.filtered(ctx, f, name)
	if join != "" {
		q = q.Joins(fmt.Sprintf("JOIN %s j ON j.product_id = catalog_product.product_id", join)).
			Select(fmt.Sprintf("j.%s, COUNT(DISTINCT catalog_product.product_id)", column)).
			Group("j." + column)
	} else {
		col := "catalog_product." + column
		q = q.Select(col + ", COUNT(*)").Where(col + " IS NOT NULL").Group(col)
	}

	rows, err := q.Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var value string
		var n int
		if err := rows.Scan(&value, &n); err != nil {
			return nil, err
		}
		if value != "" {
			counts[value] = n
		}
	}
	return counts, rows.Err()
}

// filtered applies f to a fresh query. The facet named skip is left out.
func (r *ProductRepository) filtered(ctx context.Context, f ProductFilter, skip string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&catalogEntity.Product{})

	if f.IDs != nil {
		if len(f.IDs) == 0 {
			q = q.Where("1 = 0")
		} else {
			q = q.Where("catalog_product.product_id IN ?", f.IDs)
		}
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(catalog_product.name) LIKE ? OR LOWER(catalog_product.brand) LIKE ?)", like, like)
	}
	if f.Gender != "" && skip != FacetGender {
		q = q.Where("catalog_product.gender = ?", f.Gender)
	}
	if f.Concentration != "" && skip != FacetConcentration {
		q = q.Where("catalog_product.concentration = ?", f.Concentration)
	}
	if f.MinPrice != nil {
		q = q.Where("catalog_product.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("catalog_product.price <= ?", *f.MaxPrice)
	}
	if f.MinRating != nil {
		q = q.Where("catalog_product.rating >= ?", *f.MinRating)
	}
	if f.MaxRating != nil {
		q = q.Where("catalog_product.rating <= ?", *f.MaxRating)
	}
	if f.FragranceFamilyID > 0 && skip != FacetFragranceFamily {
		q = q.Where("catalog_product.fragrance_family_id = ?", f.FragranceFamilyID)
	}
	if f.LongevityID > 0 && skip != FacetLongevity {
		q = q.Where("catalog_product.longevity_id = ?", f.LongevityID)
	}
	if f.SillageID > 0 && skip != FacetSillage {
		q = q.Where("catalog_product.sillage_id = ?", f.SillageID)
	}
	if len(f.SeasonIDs) > 0 && skip != FacetSeasons {
		q = q.Where("catalog_product.product_id IN (?)", r.members(seasonJoin, "season_id", f.SeasonIDs, f.SeasonMatch))
	}
	if len(f.OccasionIDs) > 0 && skip != FacetOccasions {
		q = q.Where("catalog_product.product_id IN (?)", r.members(occasionJoin, "occasion_id", f.OccasionIDs, f.OccasionMatch))
	}
	return q
}

// members selects the products linked to any, or all, of ids.
func (r *ProductRepository) members(table, column string, ids []uint, mode MatchMode) *gorm.DB {
	ids = unique(ids)
	sub := r.db.Session(&gorm.Session{NewDB: true}).
		Table(table).
		Select("product_id").
		Where(column+" IN ?", ids)
	if mode == MatchAll {
		sub = sub.Group("product_id").Having("COUNT(DISTINCT "+column+") = ?", len(ids))
	}
	return sub
}

func orderBy(s Sort) clause.OrderByColumn {
	col := "created_at"
	switch s.By {
	case "name":
		col = "name"
	case "price":
		col = "price"
	case "rating":
		col = "rating"
	}
	return clause.OrderByColumn{
		Column: clause.Column{Table: "catalog_product", Name: col},
		Desc:   s.Order != "asc",
	}
}

func unique(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
