package product

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	catalogEntity "storefront.GO/model/entity/catalog"
	catalogRepo "storefront.GO/model/repository/catalog"
)

// ListSeparator splits multi-valued cells such as seasons and notes.
const ListSeparator = "|"

// ImportOptions configures a product import run.
type ImportOptions struct {
	// DryRun validates every row without writing.
	DryRun bool
}

// ImportResult holds counters and timing from an import run.
type ImportResult struct {
	TotalRows int
	Created   int
	Updated   int
	Skipped   int
	Warnings  []string
	Imported  []catalogEntity.Product
	TotalTime time.Duration
}

var requiredColumns = []string{"sku", "name", "price"}

var knownColumns = map[string]bool{
	"sku": true, "name": true, "brand": true, "description": true,
	"gender": true, "concentration": true, "price": true, "rating": true,
	"fragrance_family": true, "longevity": true, "sillage": true,
	"seasons": true, "occasions": true, "notes": true,
}

var (
	genders        = []string{"male", "female", "unisex"}
	concentrations = []string{"parfum", "edp", "edt", "edc", "extrait", "oil"}
)

type importer struct {
	ctx      context.Context
	products *catalogRepo.ProductRepository
	lookups  *catalogRepo.LookupRepository
	ids      map[string]uint
	colIndex map[string]int
	opts     ImportOptions
	result   *ImportResult
}

// ImportProducts reads fragrance rows from r and upserts them by SKU. Lookup
// values (families, seasons...) are created on first use. A row that does not
// validate is skipped with a warning.
func ImportProducts(ctx context.Context, db *gorm.DB, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	startTotal := time.Now()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(headers))
	result := &ImportResult{}
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		colIndex[h] = i
		if !knownColumns[h] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("column %q: unknown, skipping", h))
		}
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("CSV must contain a '%s' column", col)
		}
	}

	imp := &importer{
		ctx:      ctx,
		products: catalogRepo.NewProductRepository(db),
		lookups:  catalogRepo.NewLookupRepository(db),
		ids:      make(map[string]uint),
		colIndex: colIndex,
		opts:     opts,
		result:   result,
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", line, err)
		}
		result.TotalRows++
		if err := imp.row(line, row); err != nil {
			return nil, err
		}
	}

	result.TotalTime = time.Since(startTotal)
	return result, nil
}

func (imp *importer) row(line int, row []string) error {
	warn := func(format string, args ...any) {
		imp.result.Warnings = append(imp.result.Warnings, fmt.Sprintf("row %d: ", line)+fmt.Sprintf(format, args...))
	}

	p := catalogEntity.Product{
		SKU:         imp.cell(row, "sku"),
		Name:        imp.cell(row, "name"),
		Brand:       imp.cell(row, "brand"),
		Description: imp.cell(row, "description"),
	}
	if p.SKU == "" || p.Name == "" {
		warn("sku and name are required")
		imp.result.Skipped++
		return nil
	}

	price, err := decimal.NewFromString(imp.cell(row, "price"))
	if err != nil || price.IsNegative() {
		warn("invalid price %q", imp.cell(row, "price"))
		imp.result.Skipped++
		return nil
	}
	p.Price = price

	if raw := imp.cell(row, "rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil || rating < 0 || rating > 5 {
			warn("invalid rating %q, ignoring", raw)
		} else {
			p.Rating = rating
		}
	}
	p.Gender = imp.enum(row, "gender", genders, warn)
	p.Concentration = imp.enum(row, "concentration", concentrations, warn)
	p.Notes = datatypes.NewJSONSlice(splitList(imp.cell(row, "notes")))

	if imp.opts.DryRun {
		imp.result.Created++
		return nil
	}

	if p.FragranceFamilyID, err = imp.lookup(catalogRepo.FacetFragranceFamily, imp.cell(row, "fragrance_family")); err != nil {
		return err
	}
	if p.LongevityID, err = imp.lookup(catalogRepo.FacetLongevity, imp.cell(row, "longevity")); err != nil {
		return err
	}
	if p.SillageID, err = imp.lookup(catalogRepo.FacetSillage, imp.cell(row, "sillage")); err != nil {
		return err
	}
	for _, name := range splitList(imp.cell(row, "seasons")) {
		id, err := imp.lookup(catalogRepo.FacetSeasons, name)
		if err != nil {
			return err
		}
		p.Seasons = append(p.Seasons, catalogEntity.Season{ID: *id, Name: name})
	}
	for _, name := range splitList(imp.cell(row, "occasions")) {
		id, err := imp.lookup(catalogRepo.FacetOccasions, name)
		if err != nil {
			return err
		}
		p.Occasions = append(p.Occasions, catalogEntity.Occasion{ID: *id, Name: name})
	}

	created, err := imp.products.Save(imp.ctx, &p)
	if err != nil {
		return err
	}
	if created {
		imp.result.Created++
	} else {
		imp.result.Updated++
	}
	imp.result.Imported = append(imp.result.Imported, p)
	return nil
}

func (imp *importer) cell(row []string, col string) string {
	i, ok := imp.colIndex[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (imp *importer) enum(row []string, col string, allowed []string, warn func(string, ...any)) string {
	v := strings.ToLower(imp.cell(row, col))
	if v == "" {
		return ""
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	warn("unknown %s %q, ignoring", col, v)
	return ""
}

// lookup resolves a lookup name to its id, nil for an empty name.
func (imp *importer) lookup(facet, name string) (*uint, error) {
	if name == "" {
		return nil, nil
	}
	key := facet + "\x00" + strings.ToLower(name)
	if id, ok := imp.ids[key]; ok {
		return &id, nil
	}
	id, err := imp.lookups.Ensure(imp.ctx, facet, name)
	if err != nil {
		return nil, fmt.Errorf("resolve %s %q: %w", facet, name, err)
	}
	imp.ids[key] = id
	return &id, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ListSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
