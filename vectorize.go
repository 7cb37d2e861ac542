package rastvec

import (
	"math"

	"github.com/wgdzlh/rastvec/log"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// 等值连通区域（4邻接），cells按行主序记录成员像元
type region struct {
	value float64
	cells []int
	sumX  float64
	sumY  float64
}

// 区域形状迭代器：按扫描次序逐个产出矢量面，面的追踪按需进行
type ShapeIter struct {
	grid   *Grid
	labels []int32
	regs   []region
	next   int
}

// 矢量化格网：返回懒惰迭代器，相邻同值像元融合为一个面，无效像元跳过。
// 相同输入的再次计算结果确定一致
func (g *GridToolbox) Shapes(grid *Grid) *ShapeIter {
	labels, regs := labelRegions(grid)
	log.Info(g.logTag+"start vectorize", zap.Int("regions", len(regs)),
		zap.Int("width", grid.Width), zap.Int("height", grid.Height))
	return &ShapeIter{grid: grid, labels: labels, regs: regs}
}

// 取下一个区域面，ok为false时迭代结束
func (it *ShapeIter) Next() (shape RegionShape, ok bool) {
	if it.next >= len(it.regs) {
		return
	}
	id := it.next
	it.next++
	shape = RegionShape{
		Geom:  traceRegion(it.grid, it.labels, it.regs[id], int32(id)),
		Value: it.regs[id].value,
	}
	ok = true
	return
}

// 矢量化格网并取全部区域面
func (g *GridToolbox) Polygonize(grid *Grid) (ret []RegionShape, err error) {
	it := g.Shapes(grid)
	ret = make([]RegionShape, 0, len(it.regs))
	for {
		shape, ok := it.Next()
		if !ok {
			break
		}
		ret = append(ret, shape)
	}
	return
}

// 矢量化格网为区域质心点，每个连通区域产出一个点。
// 像元面积相等，故质心即成员像元中心的均值
func (g *GridToolbox) Centroids(grid *Grid) (ret []PointValue, err error) {
	_, regs := labelRegions(grid)
	log.Info(g.logTag+"start centroids", zap.Int("regions", len(regs)))
	ret = make([]PointValue, len(regs))
	for i, reg := range regs {
		n := float64(len(reg.cells))
		ret[i] = PointValue{
			Point: orb.Point{reg.sumX / n, reg.sumY / n},
			Value: reg.value,
		}
	}
	return
}

// 按行主序扫描标记等值连通区域，labels中无效像元为-1
func labelRegions(grid *Grid) (labels []int32, regs []region) {
	total := grid.Width * grid.Height
	labels = make([]int32, total)
	for i := range labels {
		labels[i] = -1
	}
	offsets := [4][2]int{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}
	for row := 0; row < grid.Height; row++ {
		for col := 0; col < grid.Width; col++ {
			i0 := grid.index(row, col)
			if labels[i0] >= 0 || !grid.Valid(row, col) {
				continue
			}
			id := int32(len(regs))
			val := grid.At(row, col)
			reg := region{value: val}
			// BFS收集连通分量
			queue := []int{i0}
			labels[i0] = id
			for qi := 0; qi < len(queue); qi++ {
				u := queue[qi]
				reg.cells = append(reg.cells, u)
				ur, uc := u/grid.Width, u%grid.Width
				ctr := grid.CellCenter(ur, uc)
				reg.sumX += ctr[0]
				reg.sumY += ctr[1]
				for _, d := range offsets {
					vr, vc := ur+d[0], uc+d[1]
					if !grid.InBounds(vr, vc) {
						continue
					}
					vi := grid.index(vr, vc)
					if labels[vi] >= 0 || grid.At(vr, vc) != val || !grid.Valid(vr, vc) {
						continue
					}
					labels[vi] = id
					queue = append(queue, vi)
				}
			}
			regs = append(regs, reg)
		}
	}
	return
}

type pixVertex [2]int // (col, row) 像元角点

type boundaryEdge struct {
	a, b pixVertex
	used bool
}

// 追踪单个区域的边界，输出带孔洞的矢量面（世界坐标）
func traceRegion(grid *Grid, labels []int32, reg region, id int32) orb.Polygon {
	// 收集定向边界边：沿每个成员像元的四边，邻元不属于本区域时记一条边，
	// 方向保证区域内部位于边的固定一侧
	var edges []boundaryEdge
	out := map[pixVertex][]int{}
	addEdge := func(a, b pixVertex) {
		out[a] = append(out[a], len(edges))
		edges = append(edges, boundaryEdge{a: a, b: b})
	}
	other := func(r, c int) bool {
		return !grid.InBounds(r, c) || labels[grid.index(r, c)] != id
	}
	for _, u := range reg.cells {
		r, c := u/grid.Width, u%grid.Width
		if other(r-1, c) {
			addEdge(pixVertex{c, r}, pixVertex{c + 1, r})
		}
		if other(r, c+1) {
			addEdge(pixVertex{c + 1, r}, pixVertex{c + 1, r + 1})
		}
		if other(r+1, c) {
			addEdge(pixVertex{c + 1, r + 1}, pixVertex{c, r + 1})
		}
		if other(r, c-1) {
			addEdge(pixVertex{c, r + 1}, pixVertex{c, r})
		}
	}
	// 沿边缝合成环；夹点处取相对来向最左的转向，各环各自贴着所绕的外角闭合，
	// 孔洞在对角夹点处接触外边界时才能缝合出独立的环而非自触的锁孔环
	var rings [][]pixVertex
	for start := range edges {
		if edges[start].used {
			continue
		}
		ring := walkRing(edges, out, start)
		rings = append(rings, ring)
	}
	// 面积绝对值最大的环为外环，其余为孔洞
	outer := 0
	best := 0.0
	for i, ring := range rings {
		if a := math.Abs(shoelace(ring)); a > best {
			best = a
			outer = i
		}
	}
	poly := make(orb.Polygon, 0, len(rings))
	poly = append(poly, toWorldRing(grid.GeoTransform, rings[outer], orb.CCW))
	for i, ring := range rings {
		if i != outer {
			poly = append(poly, toWorldRing(grid.GeoTransform, ring, orb.CW))
		}
	}
	return poly
}

func walkRing(edges []boundaryEdge, out map[pixVertex][]int, start int) []pixVertex {
	ring := []pixVertex{edges[start].a}
	cur := start
	edges[start].used = true
	for {
		from, to := edges[cur].a, edges[cur].b
		dir := [2]int{to[0] - from[0], to[1] - from[1]}
		if to == ring[0] {
			break
		}
		next := -1
		bestTurn := -1
		for _, cand := range out[to] {
			if edges[cand].used {
				continue
			}
			nd := [2]int{edges[cand].b[0] - to[0], edges[cand].b[1] - to[1]}
			t := turnRank(dir, nd)
			if t > bestTurn {
				bestTurn = t
				next = cand
			}
		}
		if next < 0 {
			break
		}
		// 同向顶点为共线点，不入环
		nd := [2]int{edges[next].b[0] - to[0], edges[next].b[1] - to[1]}
		if nd != dir {
			ring = append(ring, to)
		}
		edges[next].used = true
		cur = next
	}
	return ring
}

// 转向优先级：左转 > 直行 > 右转（索引空间y向下，区域内部位于边的右侧）
func turnRank(dir, nd [2]int) int {
	left := [2]int{dir[1], -dir[0]}
	switch nd {
	case left:
		return 3
	case dir:
		return 2
	default:
		return 1
	}
}

func shoelace(ring []pixVertex) float64 {
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += float64(ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1])
	}
	return sum / 2
}

// 像元角点环转为世界坐标环并归一化绕向
func toWorldRing(gt GeoTransform, ring []pixVertex, want orb.Orientation) orb.Ring {
	r := make(orb.Ring, 0, len(ring)+1)
	for _, v := range ring {
		x, y := gt.Apply(float64(v[0]), float64(v[1]))
		r = append(r, orb.Point{x, y})
	}
	r = append(r, r[0])
	if r.Orientation() != want {
		r.Reverse()
	}
	return r
}
