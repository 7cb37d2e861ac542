package rastvec

import (
	"sort"

	"github.com/wgdzlh/rastvec/log"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

type ZonalConfig struct {
	Stats       []string
	AllTouched  bool
	FailOnEmpty bool
	Custom      map[string]StatFunc
}

// 未指定统计项时的默认集合
var DefaultZonalStats = []string{StatCount, StatNodata, StatMean, StatMin, StatMax}

var builtinStats = map[string]StatFunc{
	StatMean: func(vals []float64) float64 {
		var sum float64
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals))
	},
	StatSum: func(vals []float64) float64 {
		var sum float64
		for _, v := range vals {
			sum += v
		}
		return sum
	},
	StatMin: func(vals []float64) float64 {
		min := vals[0]
		for _, v := range vals[1:] {
			if v < min {
				min = v
			}
		}
		return min
	},
	StatMax: func(vals []float64) float64 {
		max := vals[0]
		for _, v := range vals[1:] {
			if v > max {
				max = v
			}
		}
		return max
	},
	StatMedian: func(vals []float64) float64 {
		dup := make([]float64, len(vals))
		copy(dup, vals)
		sort.Float64s(dup)
		n := len(dup)
		if n%2 == 1 {
			return dup[n/2]
		}
		return (dup[n/2-1] + dup[n/2]) / 2
	},
	// 众数，出现次数相同时取较小值以保证确定性
	StatMajority: func(vals []float64) float64 {
		counts := map[float64]int{}
		for _, v := range vals {
			counts[v]++
		}
		best := vals[0]
		bestN := 0
		for v, n := range counts {
			if n > bestN || n == bestN && v < best {
				best = v
				bestN = n
			}
		}
		return best
	},
}

// 分区统计：对每个面要素统计其覆盖像元的聚合值，结果与输入逐一对应。
// 无效像元不参与数值统计；count为参与像元数，nodata为被排除像元数
func (g *GridToolbox) ZonalStats(grid *Grid, polys []orb.Geometry, srid int, cfg ZonalConfig) (ret []ZonalResult, err error) {
	if err = checkGridGeoms(grid, len(polys), srid); err != nil {
		return
	}
	if len(cfg.Stats) == 0 {
		cfg.Stats = DefaultZonalStats
	}
	for _, name := range cfg.Stats {
		if name == StatCount || name == StatNodata {
			continue
		}
		if _, ok := cfg.Custom[name]; ok {
			continue
		}
		if _, ok := builtinStats[name]; !ok {
			log.Error(g.logTag+"unknown zonal stat", zap.String("stat", name))
			err = ErrUnknownStat
			return
		}
	}
	log.Info(g.logTag+"start zonal stats", zap.Int("polys", len(polys)), zap.Strings("stats", cfg.Stats))
	ret = make([]ZonalResult, len(polys))
	for i, poly := range polys {
		vals, excluded := collectZone(grid, poly, cfg.AllTouched)
		if len(vals) == 0 && cfg.FailOnEmpty {
			err = ErrEmptyZone
			ret = nil
			return
		}
		res := ZonalResult{
			Count:  len(vals),
			Nodata: excluded,
			Stats:  make(map[string]float64, len(cfg.Stats)),
		}
		for _, name := range cfg.Stats {
			switch name {
			case StatCount:
				res.Stats[name] = float64(len(vals))
			case StatNodata:
				res.Stats[name] = float64(excluded)
			default:
				if len(vals) == 0 {
					continue
				}
				if f, ok := cfg.Custom[name]; ok {
					res.Stats[name] = f(vals)
				} else {
					res.Stats[name] = builtinStats[name](vals)
				}
			}
		}
		ret[i] = res
	}
	return
}

// 收集面要素覆盖的有效像元值及被排除的无效像元数
func collectZone(grid *Grid, poly orb.Geometry, allTouched bool) (vals []float64, excluded int) {
	pg := toPixel(grid.GeoTransform, poly)
	b := pg.Bound()
	if b.Max[0] < 0 || b.Max[1] < 0 || b.Min[0] > float64(grid.Width) || b.Min[1] > float64(grid.Height) {
		return
	}
	w := windowOf(b, grid.Width, grid.Height)
	for row := w.minRow; row <= w.maxRow; row++ {
		for col := w.minCol; col <= w.maxCol; col++ {
			if !cellSelected(pg, row, col, allTouched) {
				continue
			}
			if grid.Valid(row, col) {
				vals = append(vals, grid.At(row, col))
			} else {
				excluded++
			}
		}
	}
	return
}
