package rastvec

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestShapefileSelectorsRoundTrip(t *testing.T) {
	g := NewGridToolbox(t.TempDir())
	shp := filepath.Join(t.TempDir(), "zones.shp")
	sels := []Selector{
		{Geom: worldBox(101, 103, 47, 49), Value: 3},
		{Geom: worldBox(100, 101, 49, 50), Value: 7},
	}
	if err := g.WriteSelectors(shp, "val", UNIVERSAL_SRID, sels...); err != nil {
		t.Fatal(err)
	}

	srid, err := g.GetSridOfShapefile(shp)
	if err != nil {
		t.Fatal(err)
	}
	if srid != UNIVERSAL_SRID {
		t.Errorf("shp srid = %d; want %d", srid, UNIVERSAL_SRID)
	}

	back, srid, err := g.ReadSelectors(shp, "val")
	if err != nil {
		t.Fatal(err)
	}
	if srid != UNIVERSAL_SRID {
		t.Errorf("read srid = %d; want %d", srid, UNIVERSAL_SRID)
	}
	if len(back) != len(sels) {
		t.Fatalf("read %d selectors; want %d", len(back), len(sels))
	}
	// 要素次序与写入一致，属性值与几何范围保持不变
	for i, sel := range back {
		if sel.Value != sels[i].Value {
			t.Errorf("selector %d value = %f; want %f", i, sel.Value, sels[i].Value)
		}
		if !sel.Geom.Bound().Equal(sels[i].Geom.Bound()) {
			t.Errorf("selector %d bound = %v; want %v", i, sel.Geom.Bound(), sels[i].Geom.Bound())
		}
	}

	// 目标srid与源一致时不做转换，原样输出
	same, srid, err := g.ReadSelectorsInSrid(shp, "val", UNIVERSAL_SRID)
	if err != nil {
		t.Fatal(err)
	}
	if srid != UNIVERSAL_SRID || len(same) != len(sels) {
		t.Errorf("identity reprojection got %d selectors srid %d", len(same), srid)
	}
}

func TestReadSelectorsMissingColumn(t *testing.T) {
	g := NewGridToolbox(t.TempDir())
	shp := filepath.Join(t.TempDir(), "zones.shp")
	if err := g.WriteSelectors(shp, "val", UNIVERSAL_SRID, Selector{Geom: worldBox(101, 103, 47, 49), Value: 3}); err != nil {
		t.Fatal(err)
	}
	_, _, err := g.ReadSelectors(shp, "nope")
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("error = %v; want missing column error naming the field", err)
	}
}

func TestReadSelectorsEmptyShp(t *testing.T) {
	g := NewGridToolbox(t.TempDir())
	shp := filepath.Join(t.TempDir(), "empty.shp")
	if err := g.WriteSelectors(shp, "", UNIVERSAL_SRID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := g.ReadSelectors(shp, ""); err != ErrEmptyShp {
		t.Errorf("error = %v; want ErrEmptyShp", err)
	}
}

func TestReadSelectorsMissingFile(t *testing.T) {
	g := NewGridToolbox()
	if _, _, err := g.ReadSelectors(filepath.Join(t.TempDir(), "absent.shp"), ""); err != ErrGdalDriverOpen {
		t.Errorf("error = %v; want ErrGdalDriverOpen", err)
	}
}
