package rastvec

import (
	"github.com/wgdzlh/rastvec/log"

	"go.uber.org/zap"
)

type MergePolicy int

const (
	// 输入次序靠后的几何覆盖先前烧录的值（默认）
	MergeReplace MergePolicy = iota
	// 所有触及该像元的几何值在填充值基础上累加
	MergeAdd
)

// 输出格网模板
type RasterTemplate struct {
	Width        int
	Height       int
	GeoTransform GeoTransform
	Srid         int
	NoData       float64
}

type BurnOptions struct {
	Merge      MergePolicy
	Fill       float64
	AllTouched bool
}

// 矢量烧录成格网，srid为选择集坐标系，必须与模板一致。
// MergeReplace下结果严格取决于输入次序，调用方需提供稳定排序
func (g *GridToolbox) Rasterize(tpl RasterTemplate, sels []Selector, srid int, opt BurnOptions) (out *Grid, err error) {
	if srid != tpl.Srid {
		err = ErrCRSMismatch
		return
	}
	if len(sels) == 0 {
		err = ErrEmptyGeometry
		return
	}
	if out, err = NewGrid(tpl.Width, tpl.Height, tpl.GeoTransform, tpl.NoData, tpl.Srid); err != nil {
		log.Error(g.logTag+"invalid raster template", zap.Error(err))
		return
	}
	log.Info(g.logTag+"start rasterize", zap.Int("selectors", len(sels)),
		zap.Int("width", tpl.Width), zap.Int("height", tpl.Height), zap.Bool("allTouched", opt.AllTouched))
	if opt.Fill != 0 {
		out.Fill(opt.Fill)
	}
	for _, sel := range sels {
		pg := toPixel(tpl.GeoTransform, sel.Geom)
		b := pg.Bound()
		if b.Max[0] < 0 || b.Max[1] < 0 || b.Min[0] > float64(tpl.Width) || b.Min[1] > float64(tpl.Height) {
			continue
		}
		w := windowOf(b, tpl.Width, tpl.Height)
		for row := w.minRow; row <= w.maxRow; row++ {
			for col := w.minCol; col <= w.maxCol; col++ {
				if !cellSelected(pg, row, col, opt.AllTouched) {
					continue
				}
				idx := out.index(row, col)
				if opt.Merge == MergeAdd {
					out.Values[idx] += sel.Value
				} else {
					out.Values[idx] = sel.Value
				}
			}
		}
	}
	return
}
