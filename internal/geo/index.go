// ABOUTME: R-tree spatial index over tagged stored records
// ABOUTME: Radius and nearest-neighbor queries for the gallery

package geo

import (
	"math"
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/harper/geosnap/internal/models"
)

const (
	tolerance   = 0.01
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	earthRadius = 6371.0 // km
)

// Point is an indexed record location.
type Point struct {
	Key string
	Lat float64
	Lng float64
}

type spatialItem struct {
	*Point
	rect *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Index is a thread-safe R-tree over record positions.
type Index struct {
	mu   sync.RWMutex
	tree *rtreego.Rtree
	size int
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{tree: rtreego.NewTree(dimensions, minChildren, maxChildren)}
}

// FromRecords indexes every tagged record; untagged ones are skipped.
func FromRecords(records []*models.StoredRecord) *Index {
	ix := NewIndex()
	for _, rec := range records {
		if rec.Position == nil {
			continue
		}
		ix.Insert(&Point{Key: rec.Key, Lat: rec.Position.Latitude, Lng: rec.Position.Longitude})
	}
	return ix
}

// Insert adds a point to the index.
func (ix *Index) Insert(p *Point) {
	rect := rtreego.Point{p.Lat, p.Lng}.ToRect(tolerance)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.tree.Insert(&spatialItem{p, rect})
	ix.size++
}

// Size returns the number of indexed points.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.size
}

// SearchRadius returns all points within radiusKm of the center, verified by
// haversine distance after the bounding-box pass.
func (ix *Index) SearchRadius(lat, lng, radiusKm float64) ([]*Point, error) {
	deg := (radiusKm / earthRadius) * (180 / math.Pi)
	bounds, err := rtreego.NewRect(
		rtreego.Point{lat - deg, lng - deg},
		[]float64{2 * deg, 2 * deg},
	)
	if err != nil {
		return nil, err
	}

	ix.mu.RLock()
	results := ix.tree.SearchIntersect(bounds)
	ix.mu.RUnlock()

	points := make([]*Point, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialItem)
		if !ok || item.Point == nil {
			continue
		}
		if Haversine(lat, lng, item.Lat, item.Lng) <= radiusKm {
			points = append(points, item.Point)
		}
	}
	return points, nil
}

// Nearest returns the n points closest to the given location.
func (ix *Index) Nearest(lat, lng float64, n int) []*Point {
	ix.mu.RLock()
	results := ix.tree.NearestNeighbors(n, rtreego.Point{lat, lng})
	ix.mu.RUnlock()

	points := make([]*Point, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialItem)
		if !ok || item.Point == nil {
			continue
		}
		points = append(points, item.Point)
	}
	return points
}

// Haversine returns the great-circle distance between two coordinates in km.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}
