// Package bingrid derives a survey's bin-grid parameters (origin, increments,
// bin widths, transformation method, J-axis bearing) from its four corners.
//
// The engine is a pure function of its input and is safe for concurrent use.
package bingrid

import (
	"fmt"
	"math"

	"github.com/samirrijal/seismeta/internal/core/domain"
	"github.com/samirrijal/seismeta/internal/pkg/geospatial"
)

// Engine computes bin-grid attributes for one set of corners.
type Engine struct {
	p1, p2, p3, p4 domain.GridPoint
	inline, xline  domain.LineDescriptor
}

// New returns an engine for the corners p1 (origin), p2 (along I), p3 (along J)
// and p4 (opposite p1).
func New(p1, p2, p3, p4 domain.GridPoint, inline, xline domain.LineDescriptor) *Engine {
	return &Engine{p1: p1, p2: p2, p3: p3, p4: p4, inline: inline, xline: xline}
}

// FromGeometry builds an engine from reader-reported volume geometry.
func FromGeometry(g domain.VolumeGeometry) *Engine {
	c := g.Corners()
	return New(c[0], c[1], c[2], c[3], g.InlineAxis(), g.CrosslineAxis())
}

type derivation func(e *Engine) (any, error)

var derivations = map[domain.Attribute]derivation{
	domain.P6BinGridOriginI: func(e *Engine) (any, error) {
		return e.p1.Inline, nil
	},
	domain.P6BinGridOriginJ: func(e *Engine) (any, error) {
		return e.p1.Xline, nil
	},
	domain.P6BinGridOriginEasting: func(e *Engine) (any, error) {
		return domain.Decimal(e.p1.Easting), nil
	},
	domain.P6BinGridOriginNorthing: func(e *Engine) (any, error) {
		return domain.Decimal(e.p1.Northing), nil
	},
	domain.P6BinNodeIncrementOnIaxis: func(e *Engine) (any, error) {
		return e.inline.Increment, nil
	},
	domain.P6BinNodeIncrementOnJaxis: func(e *Engine) (any, error) {
		return e.xline.Increment, nil
	},
	domain.P6BinWidthOnIaxis: func(e *Engine) (any, error) {
		return binWidth(e.p2.Vector().Sub(e.p1.Vector()), e.inline, "inline")
	},
	domain.P6BinWidthOnJaxis: func(e *Engine) (any, error) {
		return binWidth(e.p3.Vector().Sub(e.p1.Vector()), e.xline, "crossline")
	},
	domain.P6TransformationMethod:         (*Engine).transformationMethod,
	domain.P6MapGridBearingOfBinGridJaxis: (*Engine).bearingOfJAxis,
	domain.BinGridLocalCoordinates: func(e *Engine) (any, error) {
		coords := make([]domain.LocalCoordinate, 0, 4)
		for _, p := range []domain.GridPoint{e.p1, e.p3, e.p2, e.p4} {
			coords = append(coords, domain.LocalCoordinate{X: p.Inline, Y: p.Xline})
		}
		return coords, nil
	},
}

// Derive computes a single attribute.
func (e *Engine) Derive(attr domain.Attribute) (any, error) {
	fn, ok := derivations[attr]
	if !ok {
		return nil, fmt.Errorf("no derivation for %s", attr)
	}
	return fn(e)
}

// DeriveAll computes every attribute in declaration order.
func (e *Engine) DeriveAll() (domain.BinGrid, error) {
	attrs := domain.Attributes()
	grid := make(domain.BinGrid, 0, len(attrs))
	for _, attr := range attrs {
		v, err := e.Derive(attr)
		if err != nil {
			return nil, fmt.Errorf("derive %s: %w", attr, err)
		}
		grid = append(grid, domain.AttributeValue{Attribute: attr, Value: v})
	}
	return grid, nil
}

// binWidth is the edge length divided by the number of bin intervals, rounded up.
func binWidth(edge geospatial.Vector, axis domain.LineDescriptor, name string) (int, error) {
	if axis.Count <= 1 {
		return 0, fmt.Errorf("%w: %s count %d", domain.ErrAxisCountTooSmall, name, axis.Count)
	}
	return int(math.Ceil(edge.Norm() / float64(axis.Count-1))), nil
}

// transformationMethod classifies grid handedness with a1·b2 − a2·b1 over the
// four edge vectors of the quadrilateral.
func (e *Engine) transformationMethod() (any, error) {
	a1 := e.p2.Vector().Sub(e.p1.Vector())
	b1 := e.p3.Vector().Sub(e.p1.Vector())
	a2 := e.p4.Vector().Sub(e.p3.Vector())
	b2 := e.p4.Vector().Sub(e.p2.Vector())

	if a1.Dot(b2)-a2.Dot(b1) > 0 {
		return domain.TransformationMethodRightHanded, nil
	}
	return domain.TransformationMethodLeftHanded, nil
}

// bearingOfJAxis is the clockwise angle from north to the J axis. Eastward
// bearings keep two decimals; westward bearings are whole degrees, and one
// that rounds up to 360 wraps to 0.
func (e *Engine) bearingOfJAxis() (any, error) {
	b := e.p3.Vector().Sub(e.p1.Vector())
	norm := b.Norm()
	if norm == 0 {
		return nil, fmt.Errorf("%w: J axis has zero length", domain.ErrDegenerateGeometry)
	}

	angle := math.Acos(b.Northing() / norm)
	if math.IsNaN(angle) {
		return nil, fmt.Errorf("%w: J axis bearing undefined", domain.ErrDegenerateGeometry)
	}

	deg := geospatial.RadToDeg(angle)
	if b.Easting() >= 0 {
		return domain.Decimal(geospatial.Round(deg, 2)), nil
	}
	w := int(geospatial.Round(360-deg, 0))
	if w == 360 {
		w = 0
	}
	return w, nil
}
