// Package hotspot finds regions of elevated incident density by merging
// above-threshold grid cells into connected components.
package hotspot

import (
	"context"
	"sort"

	"github.com/jengzang/venue-risk-backend-go/internal/index"
	"github.com/jengzang/venue-risk-backend-go/internal/models"
	"github.com/jengzang/venue-risk-backend-go/internal/spatial"
	"github.com/jengzang/venue-risk-backend-go/internal/stats"
)

// DefaultSigma is the number of standard deviations above the mean cell
// count a cell must exceed to be hot.
const DefaultSigma = 1.5

// cancelCheckEvery bounds how many cells a flood fill visits between
// context checks.
const cancelCheckEvery = 256

// Options configures a detection run
type Options struct {
	CellSizeKm float64 // <= 0 uses index.DefaultCellSizeKm
	Threshold  float64 // absolute cell count; <= 0 derives mean + Sigma*stddev
	Sigma      float64 // <= 0 uses DefaultSigma
}

// Detect overlays a grid on points, marks cells whose count exceeds the
// density threshold and merges 8-connected hot cells into clusters. Cells
// are visited in (row, col) order so membership is identical across runs.
//
// When ctx is done before every component is merged, the clusters completed
// so far are returned with Partial set.
func Detect(ctx context.Context, points []models.IncidentPoint, opts Options) models.HotspotResult {
	grid := index.NewGrid(opts.CellSizeKm)
	result := models.HotspotResult{
		Clusters:   make([]models.HotspotCluster, 0),
		CellSizeKm: grid.CellSizeKm,
	}
	if len(points) == 0 {
		return result
	}

	members := make(map[index.CellID][]int)
	for i, p := range points {
		c := grid.CellOf(p.Location())
		members[c] = append(members[c], i)
	}

	result.Threshold = threshold(members, opts)

	hot := make(map[index.CellID]bool)
	var order []index.CellID
	for c, ids := range members {
		if float64(len(ids)) > result.Threshold {
			hot[c] = true
			order = append(order, c)
		}
	}
	result.HotCells = len(order)
	sortCells(order)

	visited := make(map[index.CellID]bool, len(order))
	for _, start := range order {
		if visited[start] {
			continue
		}
		if ctx.Err() != nil {
			result.Partial = true
			break
		}

		component, complete := flood(ctx, grid, start, hot, visited)
		if !complete {
			result.Partial = true
			break
		}
		result.Clusters = append(result.Clusters, buildCluster(points, members, component))
	}

	sort.SliceStable(result.Clusters, func(i, j int) bool {
		return result.Clusters[i].PointCount > result.Clusters[j].PointCount
	})
	return result
}

// threshold derives the hot-cell cutoff from the non-empty cell counts
func threshold(members map[index.CellID][]int, opts Options) float64 {
	if opts.Threshold > 0 {
		return opts.Threshold
	}
	sigma := opts.Sigma
	if sigma <= 0 {
		sigma = DefaultSigma
	}

	counts := make([]float64, 0, len(members))
	for _, ids := range members {
		counts = append(counts, float64(len(ids)))
	}
	sort.Float64s(counts)

	mean, sd := stats.MeanStdDev(counts)
	return mean + sigma*sd
}

// flood collects the hot component containing start, breadth first. It
// reports false when ctx expired before the component was complete.
func flood(ctx context.Context, grid index.Grid, start index.CellID, hot, visited map[index.CellID]bool) ([]index.CellID, bool) {
	queue := []index.CellID{start}
	visited[start] = true
	var component []index.CellID

	for n := 0; len(queue) > 0; n++ {
		if n > 0 && n%cancelCheckEvery == 0 && ctx.Err() != nil {
			return nil, false
		}
		c := queue[0]
		queue = queue[1:]
		component = append(component, c)

		neighbors := grid.Neighbors(c)
		sortCells(neighbors)
		for _, nb := range neighbors {
			if hot[nb] && !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return component, true
}

func buildCluster(points []models.IncidentPoint, members map[index.CellID][]int, cells []index.CellID) models.HotspotCluster {
	var locs []spatial.Point
	var weights []float64
	var ids []string
	severityBy := make(map[models.Category]float64)
	var total float64

	for _, c := range cells {
		for _, i := range members[c] {
			p := points[i]
			locs = append(locs, p.Location())
			weights = append(weights, p.Severity)
			ids = append(ids, p.ID)
			severityBy[p.Category] += p.Severity
			total += p.Severity
		}
	}
	sort.Strings(ids)

	centroid := spatial.WeightedCentroid(locs, weights)
	return models.HotspotCluster{
		Centroid:         centroid,
		PointCount:       len(locs),
		BoundingRadiusKm: spatial.MaxDistance(centroid, locs),
		DominantCategory: dominantCategory(severityBy),
		CellCount:        len(cells),
		TotalSeverity:    total,
		PointIDs:         ids,
	}
}

// dominantCategory picks the category with the largest severity total,
// breaking ties by category name.
func dominantCategory(severityBy map[models.Category]float64) models.Category {
	names := make([]string, 0, len(severityBy))
	for c := range severityBy {
		names = append(names, string(c))
	}
	sort.Strings(names)

	var best models.Category
	bestSeverity := -1.0
	for _, name := range names {
		if s := severityBy[models.Category(name)]; s > bestSeverity {
			best = models.Category(name)
			bestSeverity = s
		}
	}
	return best
}

func sortCells(cells []index.CellID) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
}
