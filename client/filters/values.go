// Package filters holds the canonical search/filter/sort state of the catalog
// page and its query-string representation.
package filters

import "slices"

// MatchMode decides whether an item must match any or all selected values of a
// multi-valued facet.
type MatchMode string

const (
	MatchAny MatchMode = "any"
	MatchAll MatchMode = "all"
)

// SortField is a catalog sort key.
type SortField string

const (
	SortName   SortField = "name"
	SortPrice  SortField = "price"
	SortRating SortField = "rating"
	SortNewest SortField = "newest"
)

// SortOrder is a sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Genders and Concentrations are the accepted enum values for their facets.
var (
	Genders        = []string{"male", "female", "unisex"}
	Concentrations = []string{"parfum", "edp", "edt", "edc", "extrait", "oil"}
)

// Values is one complete filter selection. Numeric ranges are kept as the text
// the user entered; an empty string means no bound. Zero ids mean no selection.
type Values struct {
	Search        string
	Gender        string
	Concentration string

	MinPrice  string
	MaxPrice  string
	MinRating string
	MaxRating string

	SortBy    SortField
	SortOrder SortOrder

	FragranceFamilyID int
	LongevityID       int
	SillageID         int

	SeasonIDs         []int
	SeasonMatchMode   MatchMode
	OccasionIDs       []int
	OccasionMatchMode MatchMode
}

// Default returns the selection with nothing filtered, newest first.
func Default() Values {
	return Values{
		SortBy:            SortNewest,
		SortOrder:         SortDesc,
		SeasonMatchMode:   MatchAny,
		OccasionMatchMode: MatchAny,
	}
}

// IsDefault reports whether v filters nothing and uses the default sort.
func (v Values) IsDefault() bool {
	return v.Equal(Default())
}

// Equal compares two selections field by field; nil and empty id lists are equal.
func (v Values) Equal(o Values) bool {
	return v.Text() == o.Text() &&
		v.Gender == o.Gender &&
		v.Concentration == o.Concentration &&
		v.SortBy == o.SortBy &&
		v.SortOrder == o.SortOrder &&
		v.FragranceFamilyID == o.FragranceFamilyID &&
		v.LongevityID == o.LongevityID &&
		v.SillageID == o.SillageID &&
		v.SeasonMatchMode == o.SeasonMatchMode &&
		v.OccasionMatchMode == o.OccasionMatchMode &&
		slices.Equal(v.SeasonIDs, o.SeasonIDs) &&
		slices.Equal(v.OccasionIDs, o.OccasionIDs)
}

// TextFields is the group of free-text and numeric inputs that are edited
// keystroke by keystroke and therefore debounced together.
type TextFields struct {
	Search    string
	MinPrice  string
	MaxPrice  string
	MinRating string
	MaxRating string
}

// Text extracts the debounced field group.
func (v Values) Text() TextFields {
	return TextFields{
		Search:    v.Search,
		MinPrice:  v.MinPrice,
		MaxPrice:  v.MaxPrice,
		MinRating: v.MinRating,
		MaxRating: v.MaxRating,
	}
}

// Normalize returns t in the form it takes after a trip through the query
// string: trimmed, with malformed bounds dropped.
func (t TextFields) Normalize() TextFields {
	return Parse(Default().WithText(t).Encode()).Text()
}

// WithText returns a copy of v with the debounced field group replaced.
func (v Values) WithText(t TextFields) Values {
	v.Search = t.Search
	v.MinPrice = t.MinPrice
	v.MaxPrice = t.MaxPrice
	v.MinRating = t.MinRating
	v.MaxRating = t.MaxRating
	return v
}

// Counts maps a facet name to per-value item counts. Keys of the inner map are
// enum values or decimal ids.
type Counts map[string]map[string]int

// Facet names used in Counts.
const (
	FacetGender          = "gender"
	FacetConcentration   = "concentration"
	FacetFragranceFamily = "fragranceFamilyId"
	FacetLongevity       = "longevityId"
	FacetSillage         = "sillageId"
	FacetSeasons         = "seasonIds"
	FacetOccasions       = "occasionIds"
)

// Count returns the count for one facet value, 0 when unknown.
func (c Counts) Count(facet, value string) int {
	return c[facet][value]
}
