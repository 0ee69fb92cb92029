package domain

import (
	"fmt"
	"time"

	"github.com/samirrijal/seismeta/internal/pkg/geospatial"
)

// Survey is a registered volumetric dataset and the geometry its reader reported.
type Survey struct {
	ID        string         `json:"id"`
	SDPath    string         `json:"sdpath"`
	Name      string         `json:"name,omitempty"`
	Geometry  VolumeGeometry `json:"geometry"`
	CreatedAt time.Time      `json:"created_at"`
}

// VolumeGeometry holds the header values a cube reader exposes for the lattice.
// Corner arrays are ordered origin, I-corner, J-corner, opposite corner.
type VolumeGeometry struct {
	Size                [3]int        `json:"size"` // inline, crossline, sample counts
	AnnotationStart     [2]int        `json:"annotation_start"`
	AnnotationIncrement [2]int        `json:"annotation_increment"`
	IndexCorners        [4][2]int     `json:"index_corners"`
	AnnotationCorners   [4][2]int     `json:"annotation_corners"`
	WorldCorners        [4][2]float64 `json:"world_corners"`
	ZStart              float64       `json:"z_start"`
	ZIncrement          float64       `json:"z_increment"`
	ZUnitName           string        `json:"z_unit_name,omitempty"`
	XYUnitName          string        `json:"xy_unit_name,omitempty"`
}

// InlineAxis returns the I-axis line descriptor.
func (g VolumeGeometry) InlineAxis() LineDescriptor {
	return LineDescriptor{Start: g.AnnotationStart[0], Increment: g.AnnotationIncrement[0], Count: g.Size[0]}
}

// CrosslineAxis returns the J-axis line descriptor.
func (g VolumeGeometry) CrosslineAxis() LineDescriptor {
	return LineDescriptor{Start: g.AnnotationStart[1], Increment: g.AnnotationIncrement[1], Count: g.Size[1]}
}

// Corner builds grid point k (0..3). World coordinates are rounded to two
// decimal places before the point is constructed.
func (g VolumeGeometry) Corner(k int) GridPoint {
	return GridPoint{
		I:        g.IndexCorners[k][0],
		J:        g.IndexCorners[k][1],
		Inline:   g.AnnotationCorners[k][0],
		Xline:    g.AnnotationCorners[k][1],
		Easting:  geospatial.Round(g.WorldCorners[k][0], 2),
		Northing: geospatial.Round(g.WorldCorners[k][1], 2),
	}
}

// Corners returns all four grid points.
func (g VolumeGeometry) Corners() [4]GridPoint {
	var pts [4]GridPoint
	for k := range pts {
		pts[k] = g.Corner(k)
	}
	return pts
}

// Validate checks the preconditions of bin-grid derivation.
func (g VolumeGeometry) Validate() error {
	if g.Size[0] < 2 {
		return fmt.Errorf("%w: inline count %d", ErrAxisCountTooSmall, g.Size[0])
	}
	if g.Size[1] < 2 {
		return fmt.Errorf("%w: crossline count %d", ErrAxisCountTooSmall, g.Size[1])
	}

	pts := g.Corners()
	for a := 0; a < len(pts); a++ {
		for b := a + 1; b < len(pts); b++ {
			if pts[a].Vector().Sub(pts[b].Vector()).Zero() {
				return fmt.Errorf("%w: corners %d and %d coincide", ErrDegenerateGeometry, a+1, b+1)
			}
		}
	}
	return nil
}

// Validate checks that a survey can be registered.
func (s *Survey) Validate() error {
	if s.SDPath == "" {
		return fmt.Errorf("%w: sdpath is required", ErrInvalidSurvey)
	}
	return s.Geometry.Validate()
}

// BinGridEvent is published whenever a survey's bin grid is derived.
type BinGridEvent struct {
	SurveyID  string    `json:"survey_id"`
	SDPath    string    `json:"sdpath"`
	BinGrid   BinGrid   `json:"bin_grid"`
	DerivedAt time.Time `json:"derived_at"`
}
