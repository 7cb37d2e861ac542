package rastvec

import "github.com/paulmach/orb"

// 选择集元素：矢量几何 + 可选标量属性（烧录值）
type Selector struct {
	Geom  orb.Geometry
	Value float64
}

// 等值连通区域矢量面
type RegionShape struct {
	Geom  orb.Polygon
	Value float64
}

// 带属性值的点（区域质心输出）
type PointValue struct {
	Point orb.Point
	Value float64
}

// 单个面要素的分区统计结果；Stats中只含请求的统计项
type ZonalResult struct {
	Count  int
	Nodata int
	Stats  map[string]float64
}

// 某一阈值下的等值线集
type ContourLine struct {
	Level float64
	Geom  orb.MultiLineString
}

// 自定义统计函数，入参为区域内全部有效像元值
type StatFunc = func([]float64) float64
