package filters

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Query-string keys.
const (
	KeySearch            = "search"
	KeyGender            = "gender"
	KeyConcentration     = "concentration"
	KeyMinPrice          = "minPrice"
	KeyMaxPrice          = "maxPrice"
	KeyMinRating         = "minRating"
	KeyMaxRating         = "maxRating"
	KeySortBy            = "sortBy"
	KeySortOrder         = "sortOrder"
	KeyFragranceFamilyID = "fragranceFamilyId"
	KeyLongevityID       = "longevityId"
	KeySillageID         = "sillageId"
	KeySeasonIDs         = "seasonIds"
	KeyOccasionIDs       = "occasionIds"
	KeySeasonMatchMode   = "seasonMatchMode"
	KeyOccasionMatchMode = "occasionMatchMode"
	KeyPage              = "page"
)

// Parse reads a selection from query values. It never fails: a value that does
// not parse falls back to its default, so a hand-edited or stale link still
// opens the catalog.
func Parse(q url.Values) Values {
	v := Default()
	v.Search = strings.TrimSpace(q.Get(KeySearch))
	v.Gender = oneOf(q.Get(KeyGender), Genders)
	v.Concentration = oneOf(q.Get(KeyConcentration), Concentrations)

	v.MinPrice = number(q.Get(KeyMinPrice))
	v.MaxPrice = number(q.Get(KeyMaxPrice))
	v.MinRating = number(q.Get(KeyMinRating))
	v.MaxRating = number(q.Get(KeyMaxRating))

	switch f := SortField(strings.TrimSpace(q.Get(KeySortBy))); f {
	case SortName, SortPrice, SortRating, SortNewest:
		v.SortBy = f
	}
	switch o := SortOrder(strings.TrimSpace(q.Get(KeySortOrder))); o {
	case SortAsc, SortDesc:
		v.SortOrder = o
	}

	v.FragranceFamilyID = id(q.Get(KeyFragranceFamilyID))
	v.LongevityID = id(q.Get(KeyLongevityID))
	v.SillageID = id(q.Get(KeySillageID))

	v.SeasonIDs = ids(q.Get(KeySeasonIDs))
	v.OccasionIDs = ids(q.Get(KeyOccasionIDs))
	v.SeasonMatchMode = matchMode(q.Get(KeySeasonMatchMode))
	v.OccasionMatchMode = matchMode(q.Get(KeyOccasionMatchMode))
	return v
}

// ParsePage reads the page number; anything but a positive integer is page 1.
func ParsePage(q url.Values) int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Get(KeyPage)))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Encode writes only the fields that differ from Default. An all-default
// selection encodes to empty values, i.e. no query string at all.
func (v Values) Encode() url.Values {
	d := Default()
	q := url.Values{}
	setString(q, KeySearch, v.Search, d.Search)
	setString(q, KeyGender, v.Gender, d.Gender)
	setString(q, KeyConcentration, v.Concentration, d.Concentration)
	setString(q, KeyMinPrice, v.MinPrice, d.MinPrice)
	setString(q, KeyMaxPrice, v.MaxPrice, d.MaxPrice)
	setString(q, KeyMinRating, v.MinRating, d.MinRating)
	setString(q, KeyMaxRating, v.MaxRating, d.MaxRating)
	setString(q, KeySortBy, string(v.SortBy), string(d.SortBy))
	setString(q, KeySortOrder, string(v.SortOrder), string(d.SortOrder))
	setID(q, KeyFragranceFamilyID, v.FragranceFamilyID)
	setID(q, KeyLongevityID, v.LongevityID)
	setID(q, KeySillageID, v.SillageID)
	if len(v.SeasonIDs) > 0 {
		q.Set(KeySeasonIDs, JoinIDs(v.SeasonIDs))
	}
	if len(v.OccasionIDs) > 0 {
		q.Set(KeyOccasionIDs, JoinIDs(v.OccasionIDs))
	}
	setString(q, KeySeasonMatchMode, string(v.SeasonMatchMode), string(d.SeasonMatchMode))
	setString(q, KeyOccasionMatchMode, string(v.OccasionMatchMode), string(d.OccasionMatchMode))
	return q
}

// JoinIDs renders ids as a comma-joined list.
func JoinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, n := range ids {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func setString(q url.Values, key, val, def string) {
	if val != "" && val != def {
		q.Set(key, val)
	}
}

func setID(q url.Values, key string, n int) {
	if n > 0 {
		q.Set(key, strconv.Itoa(n))
	}
}

func oneOf(raw string, allowed []string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if slices.Contains(allowed, raw) {
		return raw
	}
	return ""
}

// number keeps a non-negative finite decimal as typed, otherwise "".
func number(raw string) string {
	raw = strings.TrimSpace(raw)
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return ""
	}
	return raw
}

func id(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// ids parses a comma-joined id list. One bad element invalidates the whole list;
// duplicates are dropped keeping the first occurrence.
func ids(raw string) []int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n := id(p)
		if n == 0 {
			return nil
		}
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

func matchMode(raw string) MatchMode {
	if MatchMode(strings.TrimSpace(raw)) == MatchAll {
		return MatchAll
	}
	return MatchAny
}
