// Package zipgrid builds the ZIP lists that drive locator sweeps from
// Census ZCTA shapefiles. Every ZCTA becomes a candidate search point;
// Grid thins them to a coverage grid so overlapping locator radii are
// not queried twice.
package zipgrid

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// Zip is one ZCTA centroid usable as a locator search point.
type Zip struct {
	Code  string  `json:"code"`
	State string  `json:"state"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// LoadShapefile reads a ZCTA5 shapefile and returns one Zip per record.
// The centroid comes from the interior-point attributes when present and
// is computed from the polygon geometry otherwise. Records whose ZCTA
// code maps to no state prefix are kept with an empty State.
func LoadShapefile(path string) ([]Zip, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "zipgrid: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	codeIdx, ok := findField(fieldIdx, "zcta5ce20", "zcta5ce10", "zcta5ce", "geoid20", "geoid10")
	if !ok {
		return nil, eris.Errorf("zipgrid: no ZCTA code field in %s", path)
	}
	latIdx, hasLat := findField(fieldIdx, "intptlat20", "intptlat10", "intptlat")
	lonIdx, hasLon := findField(fieldIdx, "intptlon20", "intptlon10", "intptlon")

	var zips []Zip
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		code := strings.TrimSpace(strings.TrimRight(reader.Attribute(codeIdx), "\x00"))
		if len(code) != 5 {
			skipped++
			continue
		}

		var lat, lon float64
		var located bool
		if hasLat && hasLon {
			lat, lon, located = parseInteriorPoint(
				reader.Attribute(latIdx), reader.Attribute(lonIdx))
		}
		if !located {
			lat, lon, located = shapeCentroid(shape)
		}
		if !located {
			skipped++
			continue
		}

		zips = append(zips, Zip{
			Code:  code,
			State: StateForZip(code),
			Lat:   lat,
			Lon:   lon,
		})
	}

	if skipped > 0 {
		zap.L().Debug("zipgrid: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return zips, nil
}

func findField(idx map[string]int, names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := idx[n]; ok {
			return i, true
		}
	}
	return 0, false
}

// parseInteriorPoint decodes the TIGER interior-point attributes, which
// carry an explicit sign prefix ("+33.95", "-118.24").
func parseInteriorPoint(rawLat, rawLon string) (lat, lon float64, ok bool) {
	clean := func(s string) string {
		return strings.TrimPrefix(strings.TrimSpace(strings.TrimRight(s, "\x00")), "+")
	}
	lat, errLat := strconv.ParseFloat(clean(rawLat), 64)
	lon, errLon := strconv.ParseFloat(clean(rawLon), 64)
	if errLat != nil || errLon != nil || (lat == 0 && lon == 0) {
		return 0, 0, false
	}
	return lat, lon, true
}

// shapeCentroid computes a centroid for point and polygon shapes.
func shapeCentroid(shape shp.Shape) (lat, lon float64, ok bool) {
	switch s := shape.(type) {
	case *shp.Point:
		return s.Y, s.X, true
	case *shp.Polygon:
		g := polygonToGeom(s)
		if g == nil {
			return 0, 0, false
		}
		c, err := xy.Centroid(g)
		if err != nil {
			return 0, 0, false
		}
		return c.Y(), c.X(), true
	default:
		return 0, 0, false
	}
}

// polygonToGeom converts the first shapefile ring to a go-geom polygon.
// Interior rings do not move a centroid enough to matter at locator
// search radii, so only the outer ring is used.
func polygonToGeom(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}
	end := int32(len(p.Points))
	if p.NumParts > 1 {
		end = p.Parts[1]
	}
	flat := make([]float64, 0, end*2)
	for j := p.Parts[0]; j < end; j++ {
		flat = append(flat, p.Points[j].X, p.Points[j].Y)
	}
	if len(flat) < 8 {
		return nil
	}
	poly := geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
	return poly
}

// Grid thins a ZIP list to points at least spacingMiles apart, greedily
// in input order. Locators search a fixed radius around each ZIP, so a
// grid spaced near that radius covers the same ground with far fewer
// requests.
func Grid(zips []Zip, spacingMiles float64) []Zip {
	if spacingMiles <= 0 {
		return zips
	}
	var kept []Zip
	for _, z := range zips {
		tooClose := false
		for _, k := range kept {
			if k.State == z.State && haversineMiles(z.Lat, z.Lon, k.Lat, k.Lon) < spacingMiles {
				tooClose = true
				break
			}
		}
		if !tooClose {
			kept = append(kept, z)
		}
	}
	return kept
}

// ForStates returns ZIP codes for the given states, in the order the
// states are listed. An empty state list means all states, sorted.
// Within a state, codes are sorted ascending.
func ForStates(zips []Zip, states []string) []string {
	byState := make(map[string][]string)
	for _, z := range zips {
		byState[z.State] = append(byState[z.State], z.Code)
	}
	for st := range byState {
		sort.Strings(byState[st])
	}

	if len(states) == 0 {
		states = make([]string, 0, len(byState))
		for st := range byState {
			if st != "" {
				states = append(states, st)
			}
		}
		sort.Strings(states)
	}

	var out []string
	for _, st := range states {
		out = append(out, byState[strings.ToUpper(st)]...)
	}
	return out
}

const earthRadiusMiles = 3958.8

func haversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(a))
}
