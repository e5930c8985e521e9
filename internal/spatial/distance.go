package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusKm     = 6371.0088 // IUGG mean Earth radius
	EarthRadiusMeters = EarthRadiusKm * 1000
	KmPerDegree       = EarthRadiusKm * math.Pi / 180
)

// Point is a coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies inside the WGS84 coordinate ranges.
// NaN coordinates are never valid.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p Point) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lon)
}

// Distance returns the great-circle distance between a and b in kilometers.
// s2.LatLng.Distance evaluates the haversine formula on the unit sphere.
func Distance(a, b Point) float64 {
	return a.latLng().Distance(b.latLng()).Radians() * EarthRadiusKm
}

// WithinRadius reports whether b is at most r kilometers from a.
// Bulk filtering should go through the point index instead.
func WithinRadius(a, b Point, r float64) bool {
	return Distance(a, b) <= r
}

// Bearing calculates the initial bearing from a to b.
// Returns degrees in [0, 360), where 0 is North, 90 is East.
func Bearing(a, b Point) float64 {
	lat1 := a.latLng().Lat.Radians()
	lat2 := b.latLng().Lat.Radians()
	lonDiff := b.latLng().Lng.Radians() - a.latLng().Lng.Radians()

	y := math.Sin(lonDiff) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lonDiff)

	bearingDeg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(bearingDeg+360, 360)
}

// NormalizeLon wraps a longitude into [-180, 180).
func NormalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// CapExtent returns the half-widths, in degrees, of the latitude/longitude
// box enclosing the spherical cap of radiusKm around center. wrapsLon is true
// when the cap spans every longitude (it contains a pole or is wider than
// the globe at that latitude).
func CapExtent(center Point, radiusKm float64) (dLat, dLon float64, wrapsLon bool) {
	angular := radiusKm / EarthRadiusKm
	dLat = angular * 180 / math.Pi

	if center.Lat+dLat >= 90 || center.Lat-dLat <= -90 {
		return dLat, 180, true
	}

	cosLat := math.Cos(center.Lat * math.Pi / 180)
	ratio := math.Sin(angular) / cosLat
	if angular >= math.Pi/2 || ratio >= 1 {
		return dLat, 180, true
	}

	dLon = math.Asin(ratio) * 180 / math.Pi
	return dLat, dLon, false
}
