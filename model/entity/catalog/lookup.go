package catalog

// Lookup tables referenced by products. Each is a small id/name list.

type FragranceFamily struct {
	ID   uint   `gorm:"column:fragrance_family_id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;type:varchar(64);not null;uniqueIndex" json:"name"`
}

func (FragranceFamily) TableName() string { return "catalog_fragrance_family" }

type Longevity struct {
	ID   uint   `gorm:"column:longevity_id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;type:varchar(64);not null;uniqueIndex" json:"name"`
}

func (Longevity) TableName() string { return "catalog_longevity" }

type Sillage struct {
	ID   uint   `gorm:"column:sillage_id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;type:varchar(64);not null;uniqueIndex" json:"name"`
}

func (Sillage) TableName() string { return "catalog_sillage" }

type Season struct {
	ID   uint   `gorm:"column:season_id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;type:varchar(64);not null;uniqueIndex" json:"name"`
}

func (Season) TableName() string { return "catalog_season" }

type Occasion struct {
	ID   uint   `gorm:"column:occasion_id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;type:varchar(64);not null;uniqueIndex" json:"name"`
}

func (Occasion) TableName() string { return "catalog_occasion" }

// Models lists every catalog table in migration order.
func Models() []any {
	return []any{
		&FragranceFamily{}, &Longevity{}, &Sillage{}, &Season{}, &Occasion{},
		&Product{},
	}
}
