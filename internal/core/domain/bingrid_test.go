package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/samirrijal/seismeta/internal/core/domain"
)

func TestDecimal_MarshalJSON(t *testing.T) {
	tests := []struct {
		in   domain.Decimal
		want string
	}{
		{0, "0.0"},
		{180, "180.0"},
		{-12, "-12.0"},
		{5.71, "5.71"},
		{431234.56, "431234.56"},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.in)
		if err != nil {
			t.Fatalf("marshal %v: %v", tt.in, err)
		}
		if string(got) != tt.want {
			t.Errorf("marshal %v: expected %s, got %s", float64(tt.in), tt.want, got)
		}
	}
}

func TestAttribute_StringAndParse(t *testing.T) {
	if len(domain.Attributes()) != 11 {
		t.Fatalf("expected 11 attributes, got %d", len(domain.Attributes()))
	}
	for _, a := range domain.Attributes() {
		parsed, err := domain.ParseAttribute(a.String())
		if err != nil {
			t.Fatalf("parse %s: %v", a, err)
		}
		if parsed != a {
			t.Errorf("expected %d, got %d", a, parsed)
		}
	}
	if _, err := domain.ParseAttribute("P6Nope"); err == nil {
		t.Error("expected error for unknown name")
	}
	if got := domain.Attribute(9).String(); got != "Attribute(9)" {
		t.Errorf("unexpected name for unknown attribute: %s", got)
	}
}

func TestBinGrid_KeepsOrderThroughCache(t *testing.T) {
	grid := domain.BinGrid{
		{Attribute: domain.P6MapGridBearingOfBinGridJaxis, Value: 270},
		{Attribute: domain.P6BinGridOriginEasting, Value: domain.Decimal(431234.5)},
		{Attribute: domain.BinGridLocalCoordinates, Value: []domain.LocalCoordinate{{X: 1, Y: 2}}},
	}

	data, err := json.Marshal(grid)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"P6MapGridBearingOfBinGridJaxis":270,"P6BinGridOriginEasting":431234.5,"BinGridLocalCoordinates":[{"X":1,"Y":2}]}`
	if string(data) != want {
		t.Fatalf("expected %s, got %s", want, data)
	}

	var back domain.BinGrid
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(back))
	}
	if v, _ := back.Get(domain.P6MapGridBearingOfBinGridJaxis); v != 270 {
		t.Errorf("expected int 270, got %v (%T)", v, v)
	}
	if v, _ := back.Get(domain.P6BinGridOriginEasting); v != domain.Decimal(431234.5) {
		t.Errorf("expected Decimal 431234.5, got %v (%T)", v, v)
	}
	if back[2].Attribute != domain.BinGridLocalCoordinates {
		t.Errorf("order lost: %v", back[2].Attribute)
	}
}

func TestBinGrid_UnmarshalRejectsUnknownKey(t *testing.T) {
	var g domain.BinGrid
	if err := json.Unmarshal([]byte(`{"Bogus":1}`), &g); err == nil {
		t.Error("expected error for unknown key")
	}
}

// ---- Survey geometry ----

func validGeometry() domain.VolumeGeometry {
	return domain.VolumeGeometry{
		Size:                [3]int{11, 5, 251},
		AnnotationStart:     [2]int{1000, 2000},
		AnnotationIncrement: [2]int{1, 2},
		IndexCorners:        [4][2]int{{0, 0}, {10, 0}, {0, 4}, {10, 4}},
		AnnotationCorners:   [4][2]int{{1000, 2000}, {1010, 2000}, {1000, 2008}, {1010, 2008}},
		WorldCorners:        [4][2]float64{{100, 200}, {1100, 200}, {100, 300}, {1100, 300}},
	}
}

func TestVolumeGeometry_Axes(t *testing.T) {
	g := validGeometry()
	if got := g.InlineAxis(); got != (domain.LineDescriptor{Start: 1000, Increment: 1, Count: 11}) {
		t.Errorf("unexpected inline axis: %+v", got)
	}
	if got := g.CrosslineAxis(); got != (domain.LineDescriptor{Start: 2000, Increment: 2, Count: 5}) {
		t.Errorf("unexpected crossline axis: %+v", got)
	}
}

func TestVolumeGeometry_CornerRoundsToCentimetres(t *testing.T) {
	g := validGeometry()
	g.WorldCorners[2] = [2]float64{431234.56789, 6543210.12345}

	p := g.Corner(2)
	if p.Easting != 431234.57 || p.Northing != 6543210.12 {
		t.Errorf("expected (431234.57, 6543210.12), got (%v, %v)", p.Easting, p.Northing)
	}
	if p.I != 0 || p.J != 4 || p.Inline != 1000 || p.Xline != 2008 {
		t.Errorf("unexpected grid coordinates: %+v", p)
	}
}

func TestVolumeGeometry_Validate(t *testing.T) {
	if err := validGeometry().Validate(); err != nil {
		t.Fatalf("expected valid geometry, got %v", err)
	}

	g := validGeometry()
	g.Size[0] = 1
	if err := g.Validate(); !errors.Is(err, domain.ErrAxisCountTooSmall) {
		t.Errorf("expected ErrAxisCountTooSmall for inline, got %v", err)
	}

	g = validGeometry()
	g.Size[1] = 0
	if err := g.Validate(); !errors.Is(err, domain.ErrAxisCountTooSmall) {
		t.Errorf("expected ErrAxisCountTooSmall for crossline, got %v", err)
	}

	g = validGeometry()
	g.WorldCorners[2] = [2]float64{100.001, 200.002} // rounds onto the origin
	if err := g.Validate(); !errors.Is(err, domain.ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestSurvey_ValidateRequiresPath(t *testing.T) {
	s := &domain.Survey{Geometry: validGeometry()}
	if err := s.Validate(); err == nil {
		t.Error("expected error for empty sdpath")
	}
	s.SDPath = "sd://tenant/project/cube.zgy"
	if err := s.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVolumeGeometry_CornerRoundsStoredTies(t *testing.T) {
	g := domain.VolumeGeometry{
		WorldCorners: [4][2]float64{{84253.645, 57653.715}, {1, 2}, {3, 4}, {5, 6}},
	}

	p := g.Corner(0)
	if p.Easting != 84253.65 || p.Northing != 57653.71 {
		t.Errorf("expected (84253.65, 57653.71), got (%v, %v)", p.Easting, p.Northing)
	}
}

func TestSurvey_ValidateMissingSDPath(t *testing.T) {
	s := &domain.Survey{}
	if err := s.Validate(); !errors.Is(err, domain.ErrInvalidSurvey) {
		t.Errorf("expected ErrInvalidSurvey, got %v", err)
	}
}

func TestVolumeHeaders_GeometryMatchesSurvey(t *testing.T) {
	s := &domain.Survey{
		ID: "s-7",
		Geometry: domain.VolumeGeometry{
			Size:                [3]int{101, 51, 400},
			AnnotationStart:     [2]int{1000, 2000},
			AnnotationIncrement: [2]int{1, 2},
			IndexCorners:        [4][2]int{{0, 0}, {100, 0}, {0, 50}, {100, 50}},
			AnnotationCorners:   [4][2]int{{1000, 2000}, {1100, 2000}, {1000, 2100}, {1100, 2100}},
			WorldCorners:        [4][2]float64{{0, 0}, {1000, 0}, {0, 500}, {1000, 500}},
			ZUnitName:           "ms",
			XYUnitName:          "m",
		},
	}

	h := domain.HeadersOf(s)
	if h.Guid != "s-7" || h.CrosslineStart != 2000 || h.InlineIncrement != 1 {
		t.Errorf("unexpected headers: %+v", h)
	}
	if got := h.Geometry(); got != s.Geometry {
		t.Errorf("geometry changed through headers:\n got %+v\nwant %+v", got, s.Geometry)
	}
}
