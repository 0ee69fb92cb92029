package domain

// VolumeHeaders is the header dump of a cube, keyed the way cube readers
// name their fields. Readers export it and the headers route serves it.
type VolumeHeaders struct {
	Guid               string        `json:"Guid"`
	Size               [3]int        `json:"Size"`
	ZUnitName          string        `json:"ZUnitName"`
	ZStart             float64       `json:"ZStart"`
	ZIncrement         float64       `json:"ZIncrement"`
	XYUnitName         string        `json:"XYUnitName"`
	InlineStart        int           `json:"InlineStart"`
	InlineIncrement    int           `json:"InlineIncrement"`
	CrosslineStart     int           `json:"CrosslineStart"`
	CrosslineIncrement int           `json:"CrosslineIncrement"`
	WorldCorners       [4][2]float64 `json:"WorldCorners"`
	IndexCorners       [4][2]int     `json:"IndexCorners"`
	AnnotationCorners  [4][2]int     `json:"AnnotationCorners"`
}

// HeadersOf renders a registered survey as reader headers. Guid carries the
// survey ID.
func HeadersOf(s *Survey) VolumeHeaders {
	g := s.Geometry
	return VolumeHeaders{
		Guid:               s.ID,
		Size:               g.Size,
		ZUnitName:          g.ZUnitName,
		ZStart:             g.ZStart,
		ZIncrement:         g.ZIncrement,
		XYUnitName:         g.XYUnitName,
		InlineStart:        g.AnnotationStart[0],
		InlineIncrement:    g.AnnotationIncrement[0],
		CrosslineStart:     g.AnnotationStart[1],
		CrosslineIncrement: g.AnnotationIncrement[1],
		WorldCorners:       g.WorldCorners,
		IndexCorners:       g.IndexCorners,
		AnnotationCorners:  g.AnnotationCorners,
	}
}

// Geometry returns the volume geometry the headers describe.
func (h VolumeHeaders) Geometry() VolumeGeometry {
	return VolumeGeometry{
		Size:                h.Size,
		AnnotationStart:     [2]int{h.InlineStart, h.CrosslineStart},
		AnnotationIncrement: [2]int{h.InlineIncrement, h.CrosslineIncrement},
		IndexCorners:        h.IndexCorners,
		AnnotationCorners:   h.AnnotationCorners,
		WorldCorners:        h.WorldCorners,
		ZStart:              h.ZStart,
		ZIncrement:          h.ZIncrement,
		ZUnitName:           h.ZUnitName,
		XYUnitName:          h.XYUnitName,
	}
}
