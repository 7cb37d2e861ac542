package rastvec

import (
	"github.com/wgdzlh/rastvec/log"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

type MaskOptions struct {
	AllTouched bool
}

// 按矢量几何掩膜格网：输出与输入同尺寸同参考，未被任一几何选中的像元置为无效值
func (g *GridToolbox) Mask(grid *Grid, geoms []orb.Geometry, srid int, opt MaskOptions) (out *Grid, err error) {
	keep, _, err := g.maskCells(grid, geoms, srid, opt)
	if err != nil {
		return
	}
	out = grid.Clone()
	for i := range out.Values {
		if !keep[i] {
			out.Values[i] = grid.NoData
		}
	}
	return
}

// 掩膜并裁剪：输出窗口收紧到几何范围与格网的交集，窗口外像元整体剔除
func (g *GridToolbox) MaskCrop(grid *Grid, geoms []orb.Geometry, srid int, opt MaskOptions) (out *Grid, err error) {
	keep, win, err := g.maskCells(grid, geoms, srid, opt)
	if err != nil {
		return
	}
	if win.empty() {
		err = ErrEmptyWindow
		return
	}
	width := win.maxCol - win.minCol + 1
	height := win.maxRow - win.minRow + 1
	gt := grid.GeoTransform
	gt[0], gt[3] = grid.GeoTransform.Apply(float64(win.minCol), float64(win.minRow))
	if out, err = NewGrid(width, height, gt, grid.NoData, grid.Srid); err != nil {
		return
	}
	for row := win.minRow; row <= win.maxRow; row++ {
		for col := win.minCol; col <= win.maxCol; col++ {
			v := grid.NoData
			if keep[grid.index(row, col)] {
				v = grid.At(row, col)
			}
			out.Set(row-win.minRow, col-win.minCol, v)
		}
	}
	return
}

// 逐几何标记被选中的像元，同时累计各几何窗口的并集
func (g *GridToolbox) maskCells(grid *Grid, geoms []orb.Geometry, srid int, opt MaskOptions) (keep []bool, win pixWindow, err error) {
	if err = checkGridGeoms(grid, len(geoms), srid); err != nil {
		return
	}
	log.Info(g.logTag+"start mask", zap.Int("geoms", len(geoms)), zap.Bool("allTouched", opt.AllTouched))
	keep = make([]bool, len(grid.Values))
	win = pixWindow{minRow: 1, minCol: 1, maxRow: 0, maxCol: 0}
	for _, geom := range geoms {
		pg := toPixel(grid.GeoTransform, geom)
		b := pg.Bound()
		if b.Max[0] < 0 || b.Max[1] < 0 || b.Min[0] > float64(grid.Width) || b.Min[1] > float64(grid.Height) {
			continue
		}
		w := windowOf(b, grid.Width, grid.Height)
		win = win.union(w)
		for row := w.minRow; row <= w.maxRow; row++ {
			for col := w.minCol; col <= w.maxCol; col++ {
				idx := grid.index(row, col)
				if keep[idx] {
					continue
				}
				if cellSelected(pg, row, col, opt.AllTouched) {
					keep[idx] = true
				}
			}
		}
	}
	return
}
