package index

import (
	"sort"

	"github.com/jengzang/venue-risk-backend-go/internal/models"
	"github.com/jengzang/venue-risk-backend-go/internal/spatial"
)

// Index is an immutable grid index over incident points. It is built once
// per data load and only read afterwards, so concurrent queries need no
// locking.
type Index struct {
	grid   Grid
	points []models.IncidentPoint
	cells  map[CellID][]int
}

// New indexes points on a grid of cellSizeKm cells. The input slice is copied.
func New(points []models.IncidentPoint, cellSizeKm float64) *Index {
	ix := &Index{
		grid:   NewGrid(cellSizeKm),
		points: make([]models.IncidentPoint, len(points)),
		cells:  make(map[CellID][]int),
	}
	copy(ix.points, points)

	for i, p := range ix.points {
		c := ix.grid.CellOf(p.Location())
		ix.cells[c] = append(ix.cells[c], i)
	}
	return ix
}

// Len returns the number of indexed points
func (ix *Index) Len() int {
	return len(ix.points)
}

// Grid returns the cell decomposition used by the index
func (ix *Index) Grid() Grid {
	return ix.grid
}

// Points returns a copy of every indexed point in load order
func (ix *Index) Points() []models.IncidentPoint {
	out := make([]models.IncidentPoint, len(ix.points))
	copy(out, ix.points)
	return out
}

// CellTotal aggregates the points of one cell
type CellTotal struct {
	Count    int
	Severity float64
}

// CellTotals returns the point count and severity sum of every non-empty cell
func (ix *Index) CellTotals() map[CellID]CellTotal {
	totals := make(map[CellID]CellTotal, len(ix.cells))
	for c, ids := range ix.cells {
		t := CellTotal{Count: len(ids)}
		for _, i := range ids {
			t.Severity += ix.points[i].Severity
		}
		totals[c] = t
	}
	return totals
}

// RadiusQuery returns every point within radiusKm of center. Only the cells
// overlapping the query cap are visited; candidates are then filtered by
// exact haversine distance. A non-positive radius yields an empty result.
func (ix *Index) RadiusQuery(center spatial.Point, radiusKm float64) []models.IncidentPoint {
	results := make([]models.IncidentPoint, 0)
	if radiusKm <= 0 || len(ix.points) == 0 {
		return results
	}

	dLat, dLon, wraps := spatial.CapExtent(center, radiusKm)
	rowMin := ix.grid.row(center.Lat - dLat)
	rowMax := ix.grid.row(center.Lat + dLat)

	var cols []int
	if wraps {
		cols = ix.grid.allCols()
	} else {
		cols = ix.grid.colsFor(splitLon(center.Lon-dLon, center.Lon+dLon))
	}

	for r := rowMin; r <= rowMax; r++ {
		for _, c := range cols {
			for _, i := range ix.cells[CellID{Row: r, Col: c}] {
				p := ix.points[i]
				if spatial.WithinRadius(center, p.Location(), radiusKm) {
					results = append(results, p)
				}
			}
		}
	}
	return results
}

// Nearby returns the points within radiusKm of center with their distance
// and bearing, closest first (ties by id). limit <= 0 returns every match.
func (ix *Index) Nearby(center spatial.Point, radiusKm float64, limit int) []models.NearbyIncident {
	matches := ix.RadiusQuery(center, radiusKm)
	out := make([]models.NearbyIncident, len(matches))
	for i, p := range matches {
		out[i] = models.NearbyIncident{
			IncidentPoint: p,
			DistanceKm:    spatial.Distance(center, p.Location()),
			BearingDeg:    spatial.Bearing(center, p.Location()),
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BoundingBoxQuery returns every point inside box, edges inclusive
func (ix *Index) BoundingBoxQuery(box spatial.BoundingBox) []models.IncidentPoint {
	results := make([]models.IncidentPoint, 0)
	if len(ix.points) == 0 || box.MinLat > box.MaxLat {
		return results
	}

	var spans []lonSpan
	if box.CrossesAntimeridian() {
		spans = []lonSpan{{lo: box.MinLon, hi: 180}, {lo: -180, hi: box.MaxLon}}
	} else {
		spans = []lonSpan{{lo: box.MinLon, hi: box.MaxLon}}
	}
	cols := ix.grid.colsFor(spans)

	for r := ix.grid.row(box.MinLat); r <= ix.grid.row(box.MaxLat); r++ {
		for _, c := range cols {
			for _, i := range ix.cells[CellID{Row: r, Col: c}] {
				if box.Contains(ix.points[i].Location()) {
					results = append(results, ix.points[i])
				}
			}
		}
	}
	return results
}

// splitLon turns [lo, hi], which may run past ±180, into spans inside the
// valid longitude range.
func splitLon(lo, hi float64) []lonSpan {
	switch {
	case lo < -180:
		return []lonSpan{{lo: lo + 360, hi: 180}, {lo: -180, hi: hi}}
	case hi > 180:
		return []lonSpan{{lo: lo, hi: 180}, {lo: -180, hi: hi - 360}}
	default:
		return []lonSpan{{lo: lo, hi: hi}}
	}
}

// Filter returns the points for which keep reports true, in load order.
// A nil keep returns every point.
func (ix *Index) Filter(keep func(models.IncidentPoint) bool) []models.IncidentPoint {
	if keep == nil {
		return ix.Points()
	}
	out := make([]models.IncidentPoint, 0)
	for _, p := range ix.points {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
