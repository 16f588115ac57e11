// ABOUTME: GeoJSON generation utilities
// ABOUTME: Converts tagged stored records to GeoJSON FeatureCollections

package geojson

import (
	"encoding/json"
	"time"

	"github.com/harper/geosnap/internal/models"
)

// FeatureCollection represents a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature represents a GeoJSON Feature.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry represents a GeoJSON Geometry.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// PointCoordinates represents [longitude, latitude] for a Point.
type PointCoordinates [2]float64

// FromRecords converts tagged records to a FeatureCollection of Points.
// Untagged records have no geometry and are skipped.
func FromRecords(records []*models.StoredRecord) *FeatureCollection {
	features := make([]Feature, 0, len(records))

	for _, rec := range records {
		if rec.Position == nil {
			continue
		}

		props := map[string]interface{}{
			"key":          rec.Key,
			"storage_path": rec.StoragePath,
			"captured_at":  rec.CapturedAt.Format(time.RFC3339),
			"pixel_width":  rec.PixelWidth,
			"pixel_height": rec.PixelHeight,
		}
		if rec.Position.Accuracy != nil {
			props["accuracy_meters"] = *rec.Position.Accuracy
		}

		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: PointCoordinates{rec.Position.Longitude, rec.Position.Latitude},
			},
			Properties: props,
		})
	}

	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// ToJSON serializes a FeatureCollection to JSON.
func (fc *FeatureCollection) ToJSON() ([]byte, error) {
	return json.Marshal(fc)
}

// ToJSONIndent serializes a FeatureCollection to indented JSON.
func (fc *FeatureCollection) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(fc, "", "  ")
}
