package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	catalogEntity "storefront.GO/model/entity/catalog"
)

// LookupEntry is one row of a lookup table.
type LookupEntry struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type lookupTable struct {
	table string
	idCol string
}

var lookupTables = map[string]lookupTable{
	FacetFragranceFamily: {catalogEntity.FragranceFamily{}.TableName(), "fragrance_family_id"},
	FacetLongevity:       {catalogEntity.Longevity{}.TableName(), "longevity_id"},
	FacetSillage:         {catalogEntity.Sillage{}.TableName(), "sillage_id"},
	FacetSeasons:         {catalogEntity.Season{}.TableName(), "season_id"},
	FacetOccasions:       {catalogEntity.Occasion{}.TableName(), "occasion_id"},
}

// LookupRepository reads and extends the lookup tables, addressed by the facet
// that uses them.
type LookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(db *gorm.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

// All lists every lookup table keyed by facet name.
func (r *LookupRepository) All(ctx context.Context) (map[string][]LookupEntry, error) {
	db := r.db.WithContext(ctx)
	out := make(map[string][]LookupEntry, len(lookupTables))
	for facet, lt := range lookupTables {
		rows := []LookupEntry{}
		if err := db.Table(lt.table).Select(lt.idCol + " AS id, name").Order(lt.idCol).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("catalog: list %s: %w", lt.table, err)
		}
		out[facet] = rows
	}
	return out, nil
}

// Ensure returns the id of the named entry of facet's table, creating it when missing.
func (r *LookupRepository) Ensure(ctx context.Context, facet, name string) (uint, error) {
	db := r.db.WithContext(ctx)
	switch facet {
	case FacetFragranceFamily:
		m := catalogEntity.FragranceFamily{Name: name}
		err := db.Where(&m).FirstOrCreate(&m).Error
		return m.ID, err
	case FacetLongevity:
		m := catalogEntity.Longevity{Name: name}
		err := db.Where(&m).FirstOrCreate(&m).Error
		return m.ID, err
	case FacetSillage:
		m := catalogEntity.Sillage{Name: name}
		err := db.Where(&m).FirstOrCreate(&m).Error
		return m.ID, err
	case FacetSeasons:
		m := catalogEntity.Season{Name: name}
		err := db.Where(&m).FirstOrCreate(&m).Error
		return m.ID, err
	case FacetOccasions:
		m := catalogEntity.Occasion{Name: name}
		err := db.Where(&m).FirstOrCreate(&m).Error
		return m.ID, err
	}
	return 0, fmt.Errorf("catalog: %q has no lookup table", facet)
}
