package search

import (
	"net/url"
	"strconv"

	"storefront.GO/client/currency"
	"storefront.GO/client/filters"
)

// Server-side parameter names of the catalog list and count endpoints.
const (
	ParamSearch            = "search"
	ParamGender            = "gender"
	ParamConcentration     = "concentration"
	ParamMinPrice          = "min_price"
	ParamMaxPrice          = "max_price"
	ParamMinRating         = "min_rating"
	ParamMaxRating         = "max_rating"
	ParamSortBy            = "sort_by"
	ParamSortOrder         = "sort_order"
	ParamFragranceFamilyID = "fragrance_family_id"
	ParamLongevityID       = "longevity_id"
	ParamSillageID         = "sillage_id"
	ParamSeasonIDs         = "season_ids"
	ParamOccasionIDs       = "occasion_ids"
	ParamSeasonMatchMode   = "season_match_mode"
	ParamOccasionMatchMode = "occasion_match_mode"
	ParamPage              = "page"
	ParamLimit             = "limit"
)

// DefaultPageSize is the number of products per page.
const DefaultPageSize = 24

// State is everything a catalog query depends on.
type State struct {
	Filters  filters.Values
	Page     int
	Currency string
	Rates    *currency.Snapshot
}

// FilterParams translates a selection into server parameters. Price bounds are
// converted to the canonical currency; a bound that does not parse is left out.
func FilterParams(st State) url.Values {
	v := st.Filters
	p := url.Values{}
	set(p, ParamSearch, v.Search)
	set(p, ParamGender, v.Gender)
	set(p, ParamConcentration, v.Concentration)

	if amount, ok := currency.ToCanonical(v.MinPrice, st.Currency, st.Rates); ok {
		p.Set(ParamMinPrice, currency.FormatAmount(amount))
	}
	if amount, ok := currency.ToCanonical(v.MaxPrice, st.Currency, st.Rates); ok {
		p.Set(ParamMaxPrice, currency.FormatAmount(amount))
	}
	set(p, ParamMinRating, v.MinRating)
	set(p, ParamMaxRating, v.MaxRating)

	setID(p, ParamFragranceFamilyID, v.FragranceFamilyID)
	setID(p, ParamLongevityID, v.LongevityID)
	setID(p, ParamSillageID, v.SillageID)
	if len(v.SeasonIDs) > 0 {
		p.Set(ParamSeasonIDs, filters.JoinIDs(v.SeasonIDs))
		p.Set(ParamSeasonMatchMode, string(v.SeasonMatchMode))
	}
	if len(v.OccasionIDs) > 0 {
		p.Set(ParamOccasionIDs, filters.JoinIDs(v.OccasionIDs))
		p.Set(ParamOccasionMatchMode, string(v.OccasionMatchMode))
	}
	return p
}

// ListParams adds sorting and pagination to FilterParams.
func ListParams(st State, pageSize int) url.Values {
	p := FilterParams(st)
	set(p, ParamSortBy, string(st.Filters.SortBy))
	set(p, ParamSortOrder, string(st.Filters.SortOrder))
	page := st.Page
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	p.Set(ParamPage, strconv.Itoa(page))
	p.Set(ParamLimit, strconv.Itoa(pageSize))
	return p
}

func set(p url.Values, key, val string) {
	if val != "" {
		p.Set(key, val)
	}
}

func setID(p url.Values, key string, n int) {
	if n > 0 {
		p.Set(key, strconv.Itoa(n))
	}
}
