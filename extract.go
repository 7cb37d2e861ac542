package rastvec

import (
	"math"

	"github.com/paulmach/orb"
)

type Interpolation int

const (
	InterpNearest Interpolation = iota
	InterpBilinear
)

type SampleOptions struct {
	Interp Interpolation
}

// 按点位采样格网值，结果与输入点位逐一对应；出界点返回无效值而非报错
func (g *GridToolbox) SamplePoints(grid *Grid, pts []orb.Point, srid int, opt SampleOptions) (ret []float64, err error) {
	if srid != grid.Srid {
		err = ErrCRSMismatch
		return
	}
	ret = make([]float64, len(pts))
	for i, p := range pts {
		col, row := grid.GeoTransform.Invert(p[0], p[1])
		if opt.Interp == InterpBilinear {
			ret[i] = bilinearSample(grid, col, row)
		} else {
			r, c := int(math.Floor(row)), int(math.Floor(col))
			if grid.InBounds(r, c) {
				ret[i] = grid.At(r, c)
			} else {
				ret[i] = grid.NoData
			}
		}
	}
	return
}

// 双线性插值取样，四个相邻像元任一出界或无效时退化为无效值
func bilinearSample(grid *Grid, col, row float64) float64 {
	u := col - 0.5
	v := row - 0.5
	c0 := int(math.Floor(u))
	r0 := int(math.Floor(v))
	fu := u - float64(c0)
	fv := v - float64(r0)
	var corner [4]float64
	for i, rc := range [4][2]int{{r0, c0}, {r0, c0 + 1}, {r0 + 1, c0}, {r0 + 1, c0 + 1}} {
		if !grid.InBounds(rc[0], rc[1]) || !grid.Valid(rc[0], rc[1]) {
			return grid.NoData
		}
		corner[i] = grid.At(rc[0], rc[1])
	}
	top := corner[0]*(1-fu) + corner[1]*fu
	bottom := corner[2]*(1-fu) + corner[3]*fu
	return top*(1-fv) + bottom*fv
}
