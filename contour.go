package rastvec

import (
	"github.com/wgdzlh/rastvec/log"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// 方格边序号：0=上 1=右 2=下 3=左
var msSegments = [16][][2]int{
	1:  {{3, 0}},
	2:  {{0, 1}},
	3:  {{3, 1}},
	4:  {{1, 2}},
	6:  {{0, 2}},
	7:  {{3, 2}},
	8:  {{2, 3}},
	9:  {{0, 2}},
	11: {{1, 2}},
	12: {{3, 1}},
	13: {{0, 1}},
	14: {{3, 0}},
}

// 在阈值处提取等值线（marching squares，线性插值）。方格以相邻四个像元中心为角点，
// 含无效像元的方格跳过；鞍点情形按方格中心均值裁定
func (g *GridToolbox) Contours(grid *Grid, levels []float64) (ret []ContourLine, err error) {
	log.Info(g.logTag+"start contours", zap.Int("levels", len(levels)),
		zap.Int("width", grid.Width), zap.Int("height", grid.Height))
	ret = make([]ContourLine, 0, len(levels))
	for _, level := range levels {
		ret = append(ret, ContourLine{
			Level: level,
			Geom:  marchLevel(grid, level),
		})
	}
	return
}

func marchLevel(grid *Grid, level float64) orb.MultiLineString {
	type segment struct {
		a, b int // 方格边全局编号
	}
	hEdge := func(row, col int) int { return (row*grid.Width + col) * 2 }
	vEdge := func(row, col int) int { return (row*grid.Width+col)*2 + 1 }
	pts := map[int]orb.Point{}
	var segs []segment
	adj := map[int][]int{}

	interp := func(v0, v1 float64) float64 {
		if v1 == v0 {
			return 0.5
		}
		return (level - v0) / (v1 - v0)
	}
	for row := 0; row < grid.Height-1; row++ {
		for col := 0; col < grid.Width-1; col++ {
			if !grid.Valid(row, col) || !grid.Valid(row, col+1) ||
				!grid.Valid(row+1, col) || !grid.Valid(row+1, col+1) {
				continue
			}
			tl := grid.At(row, col)
			tr := grid.At(row, col+1)
			br := grid.At(row+1, col+1)
			bl := grid.At(row+1, col)
			idx := 0
			if tl >= level {
				idx |= 1
			}
			if tr >= level {
				idx |= 2
			}
			if br >= level {
				idx |= 4
			}
			if bl >= level {
				idx |= 8
			}
			if idx == 0 || idx == 15 {
				continue
			}
			pairs := msSegments[idx]
			if idx == 5 || idx == 10 {
				// 鞍点：由方格中心均值决定对角连接方式
				center := (tl + tr + br + bl) / 4
				if idx == 5 == (center >= level) {
					pairs = [][2]int{{0, 1}, {2, 3}}
				} else {
					pairs = [][2]int{{3, 0}, {1, 2}}
				}
			}
			// 方格边上的交点（索引空间，角点为像元中心）
			edgeId := [4]int{hEdge(row, col), vEdge(row, col+1), hEdge(row+1, col), vEdge(row, col)}
			edgePt := [4]orb.Point{
				{float64(col) + 0.5 + interp(tl, tr), float64(row) + 0.5},
				{float64(col) + 1.5, float64(row) + 0.5 + interp(tr, br)},
				{float64(col) + 0.5 + interp(bl, br), float64(row) + 1.5},
				{float64(col) + 0.5, float64(row) + 0.5 + interp(tl, bl)},
			}
			for _, pr := range pairs {
				a, b := edgeId[pr[0]], edgeId[pr[1]]
				pts[a] = edgePt[pr[0]]
				pts[b] = edgePt[pr[1]]
				adj[a] = append(adj[a], b)
				adj[b] = append(adj[b], a)
				segs = append(segs, segment{a: a, b: b})
			}
		}
	}
	// 从线段缝合折线：先走开链（端点度为1），再收剩余闭环
	used := map[[2]int]bool{}
	useSeg := func(a, b int) {
		if a > b {
			a, b = b, a
		}
		used[[2]int{a, b}] = true
	}
	segUsed := func(a, b int) bool {
		if a > b {
			a, b = b, a
		}
		return used[[2]int{a, b}]
	}
	var mls orb.MultiLineString
	walk := func(start int) orb.LineString {
		line := orb.LineString{toWorldPt(grid.GeoTransform, pts[start])}
		cur := start
		for {
			next := -1
			for _, nb := range adj[cur] {
				if !segUsed(cur, nb) {
					next = nb
					break
				}
			}
			if next < 0 {
				break
			}
			useSeg(cur, next)
			line = append(line, toWorldPt(grid.GeoTransform, pts[next]))
			cur = next
		}
		return line
	}
	for _, s := range segs {
		if len(adj[s.a]) == 1 && !segUsed(s.a, s.b) {
			mls = append(mls, walk(s.a))
		}
		if len(adj[s.b]) == 1 && !segUsed(s.a, s.b) {
			mls = append(mls, walk(s.b))
		}
	}
	for _, s := range segs {
		if !segUsed(s.a, s.b) {
			mls = append(mls, walk(s.a))
		}
	}
	return mls
}

func toWorldPt(gt GeoTransform, p orb.Point) orb.Point {
	x, y := gt.Apply(p[0], p[1])
	return orb.Point{x, y}
}
