package domain

import "github.com/samirrijal/seismeta/internal/pkg/geospatial"

// LineDescriptor describes one grid axis (inline or crossline) in annotation units.
type LineDescriptor struct {
	Start     int `json:"start"`
	Increment int `json:"increment"`
	Count     int `json:"count"`
}

// GridPoint is one physical corner of a survey.
type GridPoint struct {
	I        int     `json:"i"`
	J        int     `json:"j"`
	Inline   int     `json:"inline"`
	Xline    int     `json:"xline"`
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
}

// Vector returns the corner's world position as a 2-D vector.
func (p GridPoint) Vector() geospatial.Vector {
	return geospatial.NewVector(p.Easting, p.Northing)
}
