package rastvec

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

// 测试用北向上格网：原点(100,50)，像元1x1，y向下
var testGT = GeoTransform{100, 1, 0, 50, 0, -1}

func newTestGrid(t *testing.T, width, height int, vals []float64, noData float64) *Grid {
	t.Helper()
	g, err := NewGrid(width, height, testGT, noData, UNIVERSAL_SRID)
	if err != nil {
		t.Fatal(err)
	}
	if vals != nil {
		if len(vals) != width*height {
			t.Fatalf("bad vals len %d", len(vals))
		}
		copy(g.Values, vals)
	}
	return g
}

// 世界坐标下的矩形面
func worldBox(x0, x1, y0, y1 float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0},
	}}
}

func seqVals(n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i)
	}
	return vals
}

func TestNewGridErrors(t *testing.T) {
	cases := []struct {
		name   string
		width  int
		height int
		gt     GeoTransform
		err    error
	}{
		{"ZeroWidth", 0, 4, testGT, ErrGridSize},
		{"NegHeight", 4, -1, testGT, ErrGridSize},
		{"DegenerateTransform", 4, 4, GeoTransform{0, 0, 0, 0, 0, 0}, ErrInvalidTransform},
		{"ZeroAreaTransform", 4, 4, GeoTransform{0, 1, 2, 0, 2, 4}, ErrInvalidTransform},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewGrid(tc.width, tc.height, tc.gt, -1, 4326); err != tc.err {
				t.Errorf("NewGrid error = %v; want %v", err, tc.err)
			}
		})
	}
}

func TestGeoTransformRoundTrip(t *testing.T) {
	transforms := []GeoTransform{
		testGT,
		{632150, 30, 0, 4567200, 0, -30},
		{10, 2, 0.5, 20, -0.25, -2}, // 含剪切
	}
	points := [][2]float64{{0, 0}, {3.25, 1.5}, {-2, 7}}
	for _, gt := range transforms {
		for _, p := range points {
			x, y := gt.Apply(p[0], p[1])
			col, row := gt.Invert(x, y)
			if math.Abs(col-p[0]) > 1e-9 || math.Abs(row-p[1]) > 1e-9 {
				t.Errorf("gt %v: roundtrip of %v got (%f,%f)", gt, p, col, row)
			}
		}
	}
}

func TestGridAccessors(t *testing.T) {
	g := newTestGrid(t, 4, 3, seqVals(12), -9999)
	if v := g.At(1, 2); v != 6 {
		t.Errorf("At(1,2) = %f; want 6", v)
	}
	g.Set(2, 3, -9999)
	if g.Valid(2, 3) {
		t.Error("cell set to nodata should be invalid")
	}
	if ctr := g.CellCenter(0, 0); ctr[0] != 100.5 || ctr[1] != 49.5 {
		t.Errorf("CellCenter(0,0) = %v", ctr)
	}
	b := g.Bound()
	want := orb.Bound{Min: orb.Point{100, 47}, Max: orb.Point{104, 50}}
	if b != want {
		t.Errorf("Bound = %v; want %v", b, want)
	}
}

func TestGridNaNNoData(t *testing.T) {
	g := newTestGrid(t, 2, 2, nil, math.NaN())
	g.Set(0, 0, math.NaN())
	g.Set(0, 1, 3)
	if g.Valid(0, 0) {
		t.Error("NaN cell should be invalid under NaN nodata")
	}
	if !g.Valid(0, 1) {
		t.Error("numeric cell should be valid under NaN nodata")
	}
}

func TestGridClone(t *testing.T) {
	g := newTestGrid(t, 2, 2, seqVals(4), -1)
	dup := g.Clone()
	dup.Set(0, 0, 42)
	if g.At(0, 0) == 42 {
		t.Error("Clone should not share values")
	}
}
