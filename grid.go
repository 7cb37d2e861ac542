package rastvec

import (
	"math"

	"github.com/paulmach/orb"
)

// GDAL次序的仿射地理参考系数：
// x = t[0] + col*t[1] + row*t[2]
// y = t[3] + col*t[4] + row*t[5]
type GeoTransform [6]float64

func (t GeoTransform) determinant() float64 {
	return t[1]*t[5] - t[2]*t[4]
}

// 变换是否可逆（比例/旋转块行列式非零）
func (t GeoTransform) Invertible() bool {
	return t.determinant() != 0
}

// 数组索引转世界坐标（col、row为整数时对应像元左上角）
func (t GeoTransform) Apply(col, row float64) (x, y float64) {
	x = t[0] + col*t[1] + row*t[2]
	y = t[3] + col*t[4] + row*t[5]
	return
}

// 世界坐标转分数索引
func (t GeoTransform) Invert(x, y float64) (col, row float64) {
	det := t.determinant()
	dx := x - t[0]
	dy := y - t[3]
	col = (dx*t[5] - dy*t[2]) / det
	row = (dy*t[1] - dx*t[4]) / det
	return
}

// 规则格网：行主序存储的二维数值阵列，带无效值标记与仿射地理参考
type Grid struct {
	Values       []float64
	Width        int
	Height       int
	GeoTransform GeoTransform
	NoData       float64
	Srid         int
}

// 新建空格网，全部像元为零值
func NewGrid(width, height int, gt GeoTransform, noData float64, srid int) (g *Grid, err error) {
	if width <= 0 || height <= 0 {
		err = ErrGridSize
		return
	}
	if !gt.Invertible() {
		err = ErrInvalidTransform
		return
	}
	g = &Grid{
		Values:       make([]float64, width*height),
		Width:        width,
		Height:       height,
		GeoTransform: gt,
		NoData:       noData,
		Srid:         srid,
	}
	return
}

func (g *Grid) index(row, col int) int {
	return row*g.Width + col
}

func (g *Grid) At(row, col int) float64 {
	return g.Values[g.index(row, col)]
}

func (g *Grid) Set(row, col int, v float64) {
	g.Values[g.index(row, col)] = v
}

// 索引是否落在格网内
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.Height && col >= 0 && col < g.Width
}

// 该像元是否为有效值（非NoData）
func (g *Grid) Valid(row, col int) bool {
	return !isNoData(g.At(row, col), g.NoData)
}

// 像元中心的世界坐标
func (g *Grid) CellCenter(row, col int) orb.Point {
	x, y := g.GeoTransform.Apply(float64(col)+0.5, float64(row)+0.5)
	return orb.Point{x, y}
}

// 格网外包框（世界坐标）
func (g *Grid) Bound() orb.Bound {
	var b orb.Bound
	for i, c := range [4][2]float64{
		{0, 0},
		{float64(g.Width), 0},
		{0, float64(g.Height)},
		{float64(g.Width), float64(g.Height)},
	} {
		x, y := g.GeoTransform.Apply(c[0], c[1])
		p := orb.Point{x, y}
		if i == 0 {
			b = orb.Bound{Min: p, Max: p}
		} else {
			b = b.Extend(p)
		}
	}
	return b
}

// 深拷贝
func (g *Grid) Clone() *Grid {
	dup := *g
	dup.Values = make([]float64, len(g.Values))
	copy(dup.Values, g.Values)
	return &dup
}

// 以指定值填充全部像元
func (g *Grid) Fill(v float64) {
	for i := range g.Values {
		g.Values[i] = v
	}
}

// NoData为NaN时按NaN语义比较
func isNoData(v, noData float64) bool {
	if math.IsNaN(noData) {
		return math.IsNaN(v)
	}
	return v == noData
}
