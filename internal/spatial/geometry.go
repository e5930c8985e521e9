package spatial

// Centroid calculates the arithmetic centroid of a set of points.
// Longitudes are unwrapped around the first point, so a set straddling the
// antimeridian averages to a longitude near ±180.
func Centroid(points []Point) Point {
	return WeightedCentroid(points, nil)
}

// WeightedCentroid calculates the weighted centroid of a set of points.
// Missing weights count as 1; a zero weight total falls back to Centroid.
// Longitudes are unwrapped around the first point before averaging.
func WeightedCentroid(points []Point, weights []float64) Point {
	if len(points) == 0 {
		return Point{}
	}

	ref := points[0].Lon
	var sumLat, sumLon, sumWeights float64
	for i, p := range points {
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		sumLat += p.Lat * w
		sumLon += unwrapLon(p.Lon, ref) * w
		sumWeights += w
	}

	if sumWeights == 0 {
		return Centroid(points)
	}

	return Point{
		Lat: sumLat / sumWeights,
		Lon: NormalizeLon(sumLon / sumWeights),
	}
}

// unwrapLon shifts lon by a multiple of 360 so it lies within 180 degrees of ref
func unwrapLon(lon, ref float64) float64 {
	for lon-ref > 180 {
		lon -= 360
	}
	for lon-ref < -180 {
		lon += 360
	}
	return lon
}

// MaxDistance returns the largest distance in kilometers from center to any point.
func MaxDistance(center Point, points []Point) float64 {
	var max float64
	for _, p := range points {
		if d := Distance(center, p); d > max {
			max = d
		}
	}
	return max
}

// BoundingBox is an inclusive latitude/longitude rectangle.
// MinLon > MaxLon means the box crosses the antimeridian.
type BoundingBox struct {
	MinLat float64 `json:"min_lat" form:"minLat"`
	MinLon float64 `json:"min_lon" form:"minLon"`
	MaxLat float64 `json:"max_lat" form:"maxLat"`
	MaxLon float64 `json:"max_lon" form:"maxLon"`
}

// CrossesAntimeridian reports whether the box wraps across longitude ±180.
func (b BoundingBox) CrossesAntimeridian() bool {
	return b.MinLon > b.MaxLon
}

// Valid reports whether both corners are valid coordinates and MinLat <= MaxLat.
func (b BoundingBox) Valid() bool {
	return Point{Lat: b.MinLat, Lon: b.MinLon}.Valid() &&
		Point{Lat: b.MaxLat, Lon: b.MaxLon}.Valid() &&
		b.MinLat <= b.MaxLat
}

// Contains reports whether p lies inside the box.
func (b BoundingBox) Contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if b.CrossesAntimeridian() {
		return p.Lon >= b.MinLon || p.Lon <= b.MaxLon
	}
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}
