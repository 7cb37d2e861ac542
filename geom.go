package rastvec

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
)

// WKT转几何
func ParseWkt(s string) (geom orb.Geometry, err error) {
	geom, err = wkt.Unmarshal(s)
	if err != nil {
		err = ErrInvalidWKT
	}
	return
}

// WKB转几何
func ParseWkb(b []byte) (geom orb.Geometry, err error) {
	geom, err = wkb.Unmarshal(b)
	if err != nil {
		err = ErrInvalidWKB
	}
	return
}

// 几何转WKT
func ToWkt(geom orb.Geometry) string {
	return wkt.MarshalString(geom)
}

// 几何转WKB
func ToWkb(geom orb.Geometry) ([]byte, error) {
	return wkb.Marshal(geom)
}

func PointsToWkt(lon1, lon2, lat1, lat2 float64) string {
	return fmt.Sprintf("POLYGON((%[1]f %[3]f, %[1]f %[4]f, %[2]f %[4]f, %[2]f %[3]f, %[1]f %[3]f))", lon1, lon2, lat1, lat2)
}

func SpanToWkt(span [4]float64) string {
	return PointsToWkt(span[0], span[1], span[2], span[3])
}

// 将几何从世界坐标投影到分数索引空间，像元(row,col)即单位方格[col,col+1]×[row,row+1]
func toPixel(gt GeoTransform, geom orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(geom), func(p orb.Point) orb.Point {
		col, row := gt.Invert(p[0], p[1])
		return orb.Point{col, row}
	})
}

// 索引空间中的整数像元窗口（闭区间）
type pixWindow struct {
	minRow, maxRow int
	minCol, maxCol int
}

func (w pixWindow) empty() bool {
	return w.minRow > w.maxRow || w.minCol > w.maxCol
}

func (w pixWindow) union(o pixWindow) pixWindow {
	if w.empty() {
		return o
	}
	if o.empty() {
		return w
	}
	if o.minRow < w.minRow {
		w.minRow = o.minRow
	}
	if o.minCol < w.minCol {
		w.minCol = o.minCol
	}
	if o.maxRow > w.maxRow {
		w.maxRow = o.maxRow
	}
	if o.maxCol > w.maxCol {
		w.maxCol = o.maxCol
	}
	return w
}

// 像素外包框对应的像元窗口，截取到格网尺寸内
func windowOf(b orb.Bound, width, height int) pixWindow {
	w := pixWindow{
		minCol: int(math.Floor(b.Min[0])),
		minRow: int(math.Floor(b.Min[1])),
		maxCol: int(math.Ceil(b.Max[0])) - 1,
		maxRow: int(math.Ceil(b.Max[1])) - 1,
	}
	// 边界恰好压线时保证至少覆盖所在行列
	if w.maxCol < w.minCol {
		w.maxCol = w.minCol
	}
	if w.maxRow < w.minRow {
		w.maxRow = w.minRow
	}
	if w.minCol < 0 {
		w.minCol = 0
	}
	if w.minRow < 0 {
		w.minRow = 0
	}
	if w.maxCol > width-1 {
		w.maxCol = width - 1
	}
	if w.maxRow > height-1 {
		w.maxRow = height - 1
	}
	return w
}

// 几何（索引空间）是否包含指定点
func geomContains(geom orb.Geometry, pt orb.Point) bool {
	switch gm := geom.(type) {
	case orb.Ring:
		return planar.RingContains(gm, pt)
	case orb.Polygon:
		return planar.PolygonContains(gm, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(gm, pt)
	case orb.Collection:
		for _, sub := range gm {
			if geomContains(sub, pt) {
				return true
			}
		}
	}
	return false
}

// all-touched 判定：几何与单位像元方框有无正测度交叠。
// 仅在角点相触时裁切结果测度为零，统一视为未触及
func cellTouches(geom orb.Geometry, row, col int) bool {
	b := orb.Bound{
		Min: orb.Point{float64(col), float64(row)},
		Max: orb.Point{float64(col) + 1, float64(row) + 1},
	}
	if !b.Intersects(geom.Bound()) {
		return false
	}
	return clipMeasurable(clip.Geometry(b, orb.Clone(geom)))
}

// 裁切结果是否具有正测度：线取长度，面取面积，退化碎片不计
func clipMeasurable(geom orb.Geometry) bool {
	switch gm := geom.(type) {
	case nil:
		return false
	case orb.LineString, orb.MultiLineString:
		return planar.Length(gm) > 0
	case orb.Collection:
		for _, sub := range gm {
			if clipMeasurable(sub) {
				return true
			}
		}
		return false
	default:
		return math.Abs(planar.Area(geom)) > 0
	}
}

// 按包含策略判定像元(row,col)是否被几何选中。点取其所落像元，线取其穿过的
// 像元，面在all-touched下取交叠像元、否则取中心点落在面内的像元
func cellSelected(geom orb.Geometry, row, col int, allTouched bool) bool {
	switch gm := geom.(type) {
	case orb.Point:
		return int(math.Floor(gm[0])) == col && int(math.Floor(gm[1])) == row
	case orb.MultiPoint:
		for _, p := range gm {
			if int(math.Floor(p[0])) == col && int(math.Floor(p[1])) == row {
				return true
			}
		}
		return false
	case orb.LineString, orb.MultiLineString:
		return cellTouches(geom, row, col)
	case orb.Collection:
		for _, sub := range gm {
			if cellSelected(sub, row, col, allTouched) {
				return true
			}
		}
		return false
	default:
		if allTouched {
			return cellTouches(geom, row, col)
		}
		return geomContains(geom, orb.Point{float64(col) + 0.5, float64(row) + 0.5})
	}
}
