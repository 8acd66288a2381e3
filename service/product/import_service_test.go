package product_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront.GO/internal/testdb"
	catalogRepo "storefront.GO/model/repository/catalog"
	productService "storefront.GO/service/product"
)

const sampleCSV = `sku,name,brand,price,rating,gender,concentration,fragrance_family,seasons,occasions,notes,colour
F-1,Iris Poudre,Frederic Malle,300,4.5,female,EDP,Floral,Spring,Office,iris|musk,blue
F-2,Tobacco Vanille,Tom Ford,450,4.8,unisex,edp,Oriental,Autumn|Winter,Evening,tobacco|vanilla,
F-3,,Nobody,10,,,,,,,,
F-4,Sauvage,Dior,abc,,male,edt,,,,,
F-5,Aventus,Creed,500,9,male,cologne,Fresh,Spring|Summer,Office|Evening,pineapple,
`

func TestImportProducts(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	res, err := productService.ImportProducts(ctx, db, strings.NewReader(sampleCSV), productService.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalRows)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, res.Imported, 3)

	warnings := strings.Join(res.Warnings, "\n")
	assert.Contains(t, warnings, `column "colour": unknown`)
	assert.Contains(t, warnings, "row 4: sku and name are required")
	assert.Contains(t, warnings, `row 5: invalid price "abc"`)
	assert.Contains(t, warnings, `row 6: invalid rating "9"`)
	assert.Contains(t, warnings, `row 6: unknown concentration "cologne"`)

	repo := catalogRepo.NewProductRepository(db)
	products, total, err := repo.List(ctx, catalogRepo.ProductFilter{SeasonIDs: []uint{1}}, catalogRepo.Sort{By: "name", Order: "asc"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Aventus", products[0].Name)
	assert.Equal(t, "edp", res.Imported[0].Concentration)

	lookups, err := catalogRepo.NewLookupRepository(db).All(ctx)
	require.NoError(t, err)
	assert.Len(t, lookups[catalogRepo.FacetSeasons], 4)
	assert.Len(t, lookups[catalogRepo.FacetFragranceFamily], 3)
}

func TestImportProducts_UpdatesExisting(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	_, err := productService.ImportProducts(ctx, db, strings.NewReader(sampleCSV), productService.ImportOptions{})
	require.NoError(t, err)

	res, err := productService.ImportProducts(ctx, db, strings.NewReader("sku,name,price\nF-1,Iris Poudre Extrait,350\n"), productService.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.Updated)
}

func TestImportProducts_DryRunWritesNothing(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	res, err := productService.ImportProducts(ctx, db, strings.NewReader(sampleCSV), productService.ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)

	_, total, err := catalogRepo.NewProductRepository(db).List(ctx, catalogRepo.ProductFilter{}, catalogRepo.Sort{}, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestImportProducts_MissingColumn(t *testing.T) {
	db := testdb.Open(t)
	_, err := productService.ImportProducts(context.Background(), db, strings.NewReader("sku,name\nA,B\n"), productService.ImportOptions{})
	assert.ErrorContains(t, err, "'price' column")
}
