package bingrid_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/samirrijal/seismeta/internal/core/bingrid"
	"github.com/samirrijal/seismeta/internal/core/domain"
)

// ---- Fixtures ----

var (
	inlineAxis = domain.LineDescriptor{Start: 1000, Increment: 1, Count: 11}
	xlineAxis  = domain.LineDescriptor{Start: 2000, Increment: 2, Count: 5}
)

func pt(i, j, il, xl int, e, n float64) domain.GridPoint {
	return domain.GridPoint{I: i, J: j, Inline: il, Xline: xl, Easting: e, Northing: n}
}

// rectangle: I axis due east (1000 m), J axis due north (100 m).
func rectangle() *bingrid.Engine {
	return bingrid.New(
		pt(0, 0, 1000, 2000, 100, 200),
		pt(10, 0, 1010, 2000, 1100, 200),
		pt(0, 4, 1000, 2008, 100, 300),
		pt(10, 4, 1010, 2008, 1100, 300),
		inlineAxis, xlineAxis,
	)
}

// withJCorner returns an engine whose J corner sits at (e, n) relative to an
// origin at (100, 200).
func withJCorner(e, n float64) *bingrid.Engine {
	return bingrid.New(
		pt(0, 0, 1, 1, 100, 200),
		pt(1, 0, 2, 1, 200, 200),
		pt(0, 1, 1, 2, 100+e, 200+n),
		pt(1, 1, 2, 2, 200+e, 200+n),
		domain.LineDescriptor{Start: 1, Increment: 1, Count: 2},
		domain.LineDescriptor{Start: 1, Increment: 1, Count: 2},
	)
}

func mustDerive(t *testing.T, e *bingrid.Engine, attr domain.Attribute) any {
	t.Helper()
	v, err := e.Derive(attr)
	if err != nil {
		t.Fatalf("derive %s: %v", attr, err)
	}
	return v
}

// ---- Pass-through attributes ----

func TestDerive_PassThrough(t *testing.T) {
	e := rectangle()

	tests := []struct {
		attr domain.Attribute
		want any
	}{
		{domain.P6BinGridOriginI, 1000},
		{domain.P6BinGridOriginJ, 2000},
		{domain.P6BinGridOriginEasting, domain.Decimal(100)},
		{domain.P6BinGridOriginNorthing, domain.Decimal(200)},
		{domain.P6BinNodeIncrementOnIaxis, 1},
		{domain.P6BinNodeIncrementOnJaxis, 2},
	}
	for _, tt := range tests {
		if got := mustDerive(t, e, tt.attr); got != tt.want {
			t.Errorf("%s: expected %v (%T), got %v (%T)", tt.attr, tt.want, tt.want, got, got)
		}
	}
}

// ---- Bin widths ----

func TestDerive_BinWidths(t *testing.T) {
	e := rectangle()
	if got := mustDerive(t, e, domain.P6BinWidthOnIaxis); got != 100 {
		t.Errorf("expected I bin width 100, got %v", got)
	}
	if got := mustDerive(t, e, domain.P6BinWidthOnJaxis); got != 25 {
		t.Errorf("expected J bin width 25, got %v", got)
	}
}

func TestDerive_BinWidthRoundsUp(t *testing.T) {
	// 1000 m over 3 intervals = 333.33 -> 334
	e := bingrid.New(
		pt(0, 0, 1, 1, 0, 0),
		pt(3, 0, 4, 1, 1000, 0),
		pt(0, 1, 1, 2, 0, 10),
		pt(3, 1, 4, 2, 1000, 10),
		domain.LineDescriptor{Start: 1, Increment: 1, Count: 4},
		domain.LineDescriptor{Start: 1, Increment: 1, Count: 2},
	)
	if got := mustDerive(t, e, domain.P6BinWidthOnIaxis); got != 334 {
		t.Errorf("expected 334, got %v", got)
	}
}

func TestDerive_BinWidthMonotonicInCount(t *testing.T) {
	p1 := pt(0, 0, 1, 1, 0, 0)
	p2 := pt(1, 0, 2, 1, 987.65, 123.45)
	p3 := pt(0, 1, 1, 2, 0, 50)
	p4 := pt(1, 1, 2, 2, 987.65, 173.45)

	prev := int(^uint(0) >> 1)
	for count := 2; count <= 200; count++ {
		e := bingrid.New(p1, p2, p3, p4, domain.LineDescriptor{Count: count}, domain.LineDescriptor{Count: 2})
		w := mustDerive(t, e, domain.P6BinWidthOnIaxis).(int)
		if w > prev {
			t.Fatalf("bin width increased from %d to %d at count %d", prev, w, count)
		}
		prev = w
	}
}

func TestDerive_AxisCountTooSmall(t *testing.T) {
	for _, count := range []int{1, 0, -3} {
		e := bingrid.New(
			pt(0, 0, 1, 1, 0, 0),
			pt(1, 0, 2, 1, 10, 0),
			pt(0, 1, 1, 2, 0, 10),
			pt(1, 1, 2, 2, 10, 10),
			domain.LineDescriptor{Count: count},
			domain.LineDescriptor{Count: count},
		)
		if _, err := e.Derive(domain.P6BinWidthOnIaxis); !errors.Is(err, domain.ErrAxisCountTooSmall) {
			t.Errorf("count %d: expected ErrAxisCountTooSmall on I, got %v", count, err)
		}
		if _, err := e.Derive(domain.P6BinWidthOnJaxis); !errors.Is(err, domain.ErrAxisCountTooSmall) {
			t.Errorf("count %d: expected ErrAxisCountTooSmall on J, got %v", count, err)
		}
		if _, err := e.DeriveAll(); !errors.Is(err, domain.ErrAxisCountTooSmall) {
			t.Errorf("count %d: expected DeriveAll to fail with ErrAxisCountTooSmall, got %v", count, err)
		}
	}
}

// ---- Transformation method ----

func TestDerive_TransformationMethod_Parallelogram(t *testing.T) {
	// a1·b2 − a2·b1 vanishes for any parallelogram
	if got := mustDerive(t, rectangle(), domain.P6TransformationMethod); got != domain.TransformationMethodLeftHanded {
		t.Errorf("expected %d, got %v", domain.TransformationMethodLeftHanded, got)
	}
}

func TestDerive_TransformationMethod_SwapFlipsHandedness(t *testing.T) {
	p1 := pt(0, 0, 1, 1, 0, 0)
	p2 := pt(1, 0, 2, 1, 10, 0)
	p3 := pt(0, 1, 1, 2, 0, 10)
	p4 := pt(1, 1, 2, 2, 12, 11)
	axis := domain.LineDescriptor{Start: 1, Increment: 1, Count: 2}

	// a1=(10,0) b1=(0,10) a2=(12,1) b2=(2,11): 20 − 10 > 0
	got := mustDerive(t, bingrid.New(p1, p2, p3, p4, axis, axis), domain.P6TransformationMethod)
	if got != domain.TransformationMethodRightHanded {
		t.Fatalf("expected %d, got %v", domain.TransformationMethodRightHanded, got)
	}

	swapped := mustDerive(t, bingrid.New(p1, p3, p2, p4, axis, axis), domain.P6TransformationMethod)
	if swapped != domain.TransformationMethodLeftHanded {
		t.Errorf("expected %d after swapping I and J corners, got %v", domain.TransformationMethodLeftHanded, swapped)
	}
}

// ---- Bearing ----

func TestDerive_Bearing(t *testing.T) {
	tests := []struct {
		name string
		e, n float64
		want any
	}{
		{"due north", 0, 100, domain.Decimal(0)},
		{"due south", 0, -100, domain.Decimal(180)},
		{"due east", 100, 0, domain.Decimal(90)},
		{"north east", 100, 100, domain.Decimal(45)},
		{"due west", -100, 0, 270},
		{"north west", -100, 100, 315},
		{"south west", -100, -100, 225},
		{"eastward keeps decimals", 10, 100, domain.Decimal(5.71)},
		{"westward drops decimals", -10, 100, 354},
		{"near north from the west wraps", -0.01, 100000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustDerive(t, withJCorner(tt.e, tt.n), domain.P6MapGridBearingOfBinGridJaxis)
			if got != tt.want {
				t.Errorf("expected %v (%T), got %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}
}

func TestDerive_BearingRange(t *testing.T) {
	for e := -500.0; e <= 500; e += 37.5 {
		for n := -500.0; n <= 500; n += 41.25 {
			if e == 0 && n == 0 {
				continue
			}
			v := mustDerive(t, withJCorner(e, n), domain.P6MapGridBearingOfBinGridJaxis)
			var deg float64
			switch b := v.(type) {
			case domain.Decimal:
				deg = float64(b)
			case int:
				deg = float64(b)
			default:
				t.Fatalf("unexpected bearing type %T", v)
			}
			if deg < 0 || deg >= 360 {
				t.Errorf("bearing for (%v,%v) out of range: %v", e, n, deg)
			}
		}
	}
}

func TestDerive_BearingDegenerate(t *testing.T) {
	_, err := withJCorner(0, 0).Derive(domain.P6MapGridBearingOfBinGridJaxis)
	if !errors.Is(err, domain.ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
}

// ---- Local coordinates ----

func TestDerive_LocalCoordinatesOrder(t *testing.T) {
	axis := domain.LineDescriptor{Start: 0, Increment: 1, Count: 2}
	e := bingrid.New(
		pt(0, 0, 0, 0, 0, 0),
		pt(1, 0, 1, 0, 10, 0),
		pt(0, 1, 0, 1, 0, 10),
		pt(1, 1, 1, 1, 10, 10),
		axis, axis,
	)

	got := mustDerive(t, e, domain.BinGridLocalCoordinates).([]domain.LocalCoordinate)
	want := []domain.LocalCoordinate{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	if len(got) != len(want) {
		t.Fatalf("expected %d coordinates, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("coordinate %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestDerive_UnknownAttribute(t *testing.T) {
	if _, err := rectangle().Derive(domain.Attribute(9)); err == nil {
		t.Error("expected error for unknown attribute")
	}
}

// ---- Aggregate ----

const rectangleJSON = `{
  "P6BinGridOriginI": 1000,
  "P6BinGridOriginJ": 2000,
  "P6BinGridOriginEasting": 100.0,
  "P6BinGridOriginNorthing": 200.0,
  "P6BinNodeIncrementOnIaxis": 1,
  "P6BinNodeIncrementOnJaxis": 2,
  "P6BinWidthOnIaxis": 100,
  "P6BinWidthOnJaxis": 25,
  "P6TransformationMethod": 1049,
  "P6MapGridBearingOfBinGridJaxis": 0.0,
  "BinGridLocalCoordinates": [
    {
      "X": 1000,
      "Y": 2000
    },
    {
      "X": 1000,
      "Y": 2008
    },
    {
      "X": 1010,
      "Y": 2000
    },
    {
      "X": 1010,
      "Y": 2008
    }
  ]
}`

func TestDeriveAll_JSON(t *testing.T) {
	grid, err := rectangle().DeriveAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid) != len(domain.Attributes()) {
		t.Fatalf("expected %d attributes, got %d", len(domain.Attributes()), len(grid))
	}
	for i, attr := range domain.Attributes() {
		if grid[i].Attribute != attr {
			t.Errorf("position %d: expected %s, got %s", i, attr, grid[i].Attribute)
		}
	}

	out, err := grid.Indent()
	if err != nil {
		t.Fatalf("indent: %v", err)
	}
	if string(out) != rectangleJSON {
		t.Errorf("unexpected JSON:\n%s\nwant:\n%s", out, rectangleJSON)
	}
}

func TestDeriveAll_Deterministic(t *testing.T) {
	first, err := rectangle().DeriveAll()
	if err != nil {
		t.Fatal(err)
	}
	want, _ := first.MarshalJSON()

	var wg sync.WaitGroup
	results := make([][]byte, 16)
	e := rectangle()
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := e.DeriveAll()
			if err != nil {
				t.Error(err)
				return
			}
			results[i], _ = g.MarshalJSON()
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if !bytes.Equal(got, want) {
			t.Errorf("run %d differs:\n%s\nwant:\n%s", i, got, want)
		}
	}
}

func TestFromGeometry_RoundsWorldCorners(t *testing.T) {
	g := domain.VolumeGeometry{
		Size:                [3]int{11, 5, 100},
		AnnotationStart:     [2]int{1000, 2000},
		AnnotationIncrement: [2]int{1, 2},
		IndexCorners:        [4][2]int{{0, 0}, {10, 0}, {0, 4}, {10, 4}},
		AnnotationCorners:   [4][2]int{{1000, 2000}, {1010, 2000}, {1000, 2008}, {1010, 2008}},
		WorldCorners:        [4][2]float64{{100.004, 199.996}, {1100, 200}, {100, 300}, {1100, 300}},
	}

	e := bingrid.FromGeometry(g)
	if got := mustDerive(t, e, domain.P6BinGridOriginEasting); got != domain.Decimal(100) {
		t.Errorf("expected easting 100, got %v", got)
	}
	if got := mustDerive(t, e, domain.P6BinGridOriginNorthing); got != domain.Decimal(200) {
		t.Errorf("expected northing 200, got %v", got)
	}
	if got := mustDerive(t, e, domain.P6BinWidthOnJaxis); got != 25 {
		t.Errorf("expected J width 25, got %v", got)
	}
}
