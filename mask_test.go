package rastvec

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestMaskCentroidPolicy(t *testing.T) {
	g := NewGridToolbox()
	grid := newTestGrid(t, 4, 4, seqVals(16), -9999)
	// 覆盖第1~2行、第1~2列像元的矩形
	box := worldBox(101, 103, 47, 49)
	out, err := g.Mask(grid, []orb.Geometry{box}, UNIVERSAL_SRID, MaskOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != grid.Width || out.Height != grid.Height || out.GeoTransform != grid.GeoTransform {
		t.Fatal("mask must preserve shape and transform")
	}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			inside := row >= 1 && row <= 2 && col >= 1 && col <= 2
			v := out.At(row, col)
			if inside && v != grid.At(row, col) {
				t.Errorf("cell (%d,%d) = %f; want kept", row, col, v)
			}
			if !inside && v != grid.NoData {
				t.Errorf("cell (%d,%d) = %f; want nodata", row, col, v)
			}
		}
	}
	// 输入格网不被修改
	if grid.At(0, 0) != 0 {
		t.Error("mask must not mutate input")
	}
}

func TestMaskAllTouched(t *testing.T) {
	g := NewGridToolbox()
	grid := newTestGrid(t, 4, 4, seqVals(16), -9999)
	// 横跨(1,1)与(1,2)两像元但不含任何中心点的窄条
	box := worldBox(101.6, 102.4, 48.2, 48.8)

	out, err := g.Mask(grid, []orb.Geometry{box}, UNIVERSAL_SRID, MaskOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out.Values {
		if v != grid.NoData {
			t.Fatalf("centroid policy: cell %d should be nodata", i)
		}
	}

	out, err = g.Mask(grid, []orb.Geometry{box}, UNIVERSAL_SRID, MaskOptions{AllTouched: true})
	if err != nil {
		t.Fatal(err)
	}
	kept := 0
	for i, v := range out.Values {
		if v != grid.NoData {
			kept++
			if i != grid.index(1, 1) && i != grid.index(1, 2) {
				t.Errorf("unexpected kept cell %d", i)
			}
		}
	}
	if kept != 2 {
		t.Errorf("all-touched kept %d cells; want 2", kept)
	}
}

func TestMaskAllTouchedCornerTouch(t *testing.T) {
	g := NewGridToolbox()
	grid := newTestGrid(t, 4, 4, seqVals(16), -9999)
	// 斜边恰好穿过像元角点的三角形，关于格网主对角线对称
	tri := orb.Polygon{orb.Ring{{100, 46}, {104, 50}, {104, 46}, {100, 46}}}

	out, err := g.Mask(grid, []orb.Geometry{tri}, UNIVERSAL_SRID, MaskOptions{AllTouched: true})
	if err != nil {
		t.Fatal(err)
	}
	kept := 0
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if out.Valid(row, col) != out.Valid(col, row) {
				t.Errorf("asymmetric keep at (%d,%d)", row, col)
			}
			if out.Valid(row, col) {
				kept++
			}
		}
	}
	if kept != 10 {
		t.Errorf("all-touched kept %d cells; want 10", kept)
	}
	// 仅角点相触的像元不入选
	for _, rc := range [][2]int{{0, 2}, {1, 1}, {2, 0}} {
		if out.Valid(rc[0], rc[1]) {
			t.Errorf("corner-touch cell (%d,%d) kept", rc[0], rc[1])
		}
	}
}

func TestMaskCrop(t *testing.T) {
	g := NewGridToolbox()
	grid := newTestGrid(t, 4, 4, seqVals(16), -9999)
	box := worldBox(101, 103, 47, 49)
	geoms := []orb.Geometry{box}

	masked, err := g.Mask(grid, geoms, UNIVERSAL_SRID, MaskOptions{})
	if err != nil {
		t.Fatal(err)
	}
	cropped, err := g.MaskCrop(grid, geoms, UNIVERSAL_SRID, MaskOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if cropped.Width != 2 || cropped.Height != 2 {
		t.Fatalf("crop shape = %dx%d; want 2x2", cropped.Width, cropped.Height)
	}
	wantGT := GeoTransform{101, 1, 0, 49, 0, -1}
	if cropped.GeoTransform != wantGT {
		t.Fatalf("crop transform = %v; want %v", cropped.GeoTransform, wantGT)
	}
	// 裁剪窗口内取值与纯掩膜一致
	for row := 0; row < cropped.Height; row++ {
		for col := 0; col < cropped.Width; col++ {
			if cropped.At(row, col) != masked.At(row+1, col+1) {
				t.Errorf("crop cell (%d,%d) disagrees with mask", row, col)
			}
		}
	}
}

func TestMaskErrors(t *testing.T) {
	g := NewGridToolbox()
	grid := newTestGrid(t, 4, 4, nil, -9999)
	box := worldBox(101, 103, 47, 49)

	if _, err := g.Mask(grid, []orb.Geometry{box}, 3857, MaskOptions{}); err != ErrCRSMismatch {
		t.Errorf("srid mismatch error = %v; want ErrCRSMismatch", err)
	}
	if _, err := g.Mask(grid, nil, UNIVERSAL_SRID, MaskOptions{}); err != ErrEmptyGeometry {
		t.Errorf("empty geoms error = %v; want ErrEmptyGeometry", err)
	}
	// 几何完全在格网外时无裁剪窗口
	far := worldBox(500, 510, -100, -90)
	if _, err := g.MaskCrop(grid, []orb.Geometry{far}, UNIVERSAL_SRID, MaskOptions{}); err != ErrEmptyWindow {
		t.Errorf("outside crop error = %v; want ErrEmptyWindow", err)
	}
}
