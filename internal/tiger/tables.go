// Package tiger downloads Census TIGER/Line boundary shapefiles and
// bulk-loads them into PostGIS geo.* tables for the crosswalk build.
package tiger

import (
	"fmt"
	"strings"
)

// Product describes one TIGER/Line national shapefile product.
type Product struct {
	Name     string   // e.g., "COUNTY"
	Table    string   // target table under the geo schema
	Columns  []string // DB columns (without geom)
	GeomType string   // "MULTIPOLYGON"
}

// Products lists the boundary products the crosswalk build needs: county
// polygons and American Indian / Alaska Native / Native Hawaiian areas.
var Products = []Product{
	{
		Name:  "COUNTY",
		Table: "counties",
		Columns: []string{
			"statefp", "countyfp", "geoid", "name", "namelsad",
			"lsad", "aland", "awater", "intptlat", "intptlon",
		},
		GeomType: "MULTIPOLYGON",
	},
	{
		Name:  "AIANNH",
		Table: "aiannh",
		Columns: []string{
			"aiannhce", "geoid", "name", "namelsad", "lsad",
			"aland", "awater", "intptlat", "intptlon",
		},
		GeomType: "MULTIPOLYGON",
	},
}

// URL returns the census.gov download URL for a product and year.
func (p Product) URL(year int) string {
	return fmt.Sprintf(
		"https://www2.census.gov/geo/tiger/TIGER%d/%s/tl_%d_us_%s.zip",
		year, p.Name, year, strings.ToLower(p.Name),
	)
}

// ProductByName returns the product with the given name.
func ProductByName(name string) (Product, bool) {
	for _, p := range Products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}
