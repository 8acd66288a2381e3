package product

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	catalogRepo "storefront.GO/model/repository/catalog"
)

const (
	defaultLimit = 24
	maxLimit     = 100
)

// listQuery is the query string of GET /api/products and its filter-counts twin.
type listQuery struct {
	Search            string `mapstructure:"search"`
	Gender            string `mapstructure:"gender"`
	Concentration     string `mapstructure:"concentration"`
	MinPrice          string `mapstructure:"min_price"`
	MaxPrice          string `mapstructure:"max_price"`
	MinRating         string `mapstructure:"min_rating"`
	MaxRating         string `mapstructure:"max_rating"`
	FragranceFamilyID uint   `mapstructure:"fragrance_family_id"`
	LongevityID       uint   `mapstructure:"longevity_id"`
	SillageID         uint   `mapstructure:"sillage_id"`
	SeasonIDs         []uint `mapstructure:"season_ids"`
	OccasionIDs       []uint `mapstructure:"occasion_ids"`
	SeasonMatchMode   string `mapstructure:"season_match_mode"`
	OccasionMatchMode string `mapstructure:"occasion_match_mode"`
	SortBy            string `mapstructure:"sort_by"`
	SortOrder         string `mapstructure:"sort_order"`
	Page              int    `mapstructure:"page"`
	Limit             int    `mapstructure:"limit"`
}

// decodeQuery reads the first value of every parameter into a listQuery.
// Id lists are comma separated.
func decodeQuery(values map[string][]string) (listQuery, error) {
	raw := make(map[string]interface{}, len(values))
	for k, v := range values {
		if len(v) > 0 && strings.TrimSpace(v[0]) != "" {
			raw[k] = strings.TrimSpace(v[0])
		}
	}
	var q listQuery
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		Result:           &q,
	})
	if err != nil {
		return q, err
	}
	if err := dec.Decode(raw); err != nil {
		return q, fmt.Errorf("invalid query: %w", err)
	}
	return q, nil
}

func (q listQuery) filter() (catalogRepo.ProductFilter, error) {
	f := catalogRepo.ProductFilter{
		Search:            q.Search,
		Gender:            q.Gender,
		Concentration:     q.Concentration,
		FragranceFamilyID: q.FragranceFamilyID,
		LongevityID:       q.LongevityID,
		SillageID:         q.SillageID,
		SeasonIDs:         q.SeasonIDs,
		OccasionIDs:       q.OccasionIDs,
	}
	var err error
	if f.MinPrice, err = optDecimal("min_price", q.MinPrice); err != nil {
		return f, err
	}
	if f.MaxPrice, err = optDecimal("max_price", q.MaxPrice); err != nil {
		return f, err
	}
	if f.MinRating, err = optFloat("min_rating", q.MinRating); err != nil {
		return f, err
	}
	if f.MaxRating, err = optFloat("max_rating", q.MaxRating); err != nil {
		return f, err
	}
	if f.SeasonMatch, err = matchMode("season_match_mode", q.SeasonMatchMode); err != nil {
		return f, err
	}
	if f.OccasionMatch, err = matchMode("occasion_match_mode", q.OccasionMatchMode); err != nil {
		return f, err
	}
	return f, nil
}

func (q listQuery) sort() catalogRepo.Sort {
	s := catalogRepo.Sort{By: "newest", Order: "desc"}
	switch q.SortBy {
	case "name", "price", "rating", "newest":
		s.By = q.SortBy
	}
	if q.SortOrder == "asc" {
		s.Order = "asc"
	}
	return s
}

func (q listQuery) paging() (page, limit int) {
	page, limit = q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func optDecimal(name, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil, fmt.Errorf("%s must be a non-negative number", name)
	}
	return &d, nil
}

func optFloat(name, s string) (*float64, error) {
	d, err := optDecimal(name, s)
	if err != nil || d == nil {
		return nil, err
	}
	v := d.InexactFloat64()
	return &v, nil
}

func matchMode(name, s string) (catalogRepo.MatchMode, error) {
	switch s {
	case "", string(catalogRepo.MatchAny):
		return catalogRepo.MatchAny, nil
	case string(catalogRepo.MatchAll):
		return catalogRepo.MatchAll, nil
	}
	return "", fmt.Errorf("%s must be any or all", name)
}
