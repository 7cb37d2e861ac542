package rastvec

import (
	"strconv"
	"strings"
	"sync"

	"github.com/wgdzlh/rastvec/log"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// 格网/矢量转换工具箱，tmpDir为可选的临时目录路径（未提供的话为当前目录）
type GridToolbox struct {
	refMap map[int]gdal.SpatialReference
	rLock  sync.Mutex
	tmpDir string
	logTag string
}

// 由GDAL库C语言创建的内存对象，需要手动调用Destroy回收
type destroyable interface {
	Destroy()
}

func NewGridToolbox(tmpDir ...string) *GridToolbox {
	g := &GridToolbox{
		refMap: map[int]gdal.SpatialReference{},
		logTag: "GridToolbox:",
	}
	if len(tmpDir) > 0 && tmpDir[0] != "" {
		g.tmpDir = tmpDir[0]
	}
	return g
}

// 获取srid对应的坐标系（可复用，故无需回收）
func (g *GridToolbox) getSridRef(srid int) (ref gdal.SpatialReference, err error) {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	ref, ok := g.refMap[srid]
	if ok {
		return
	}
	ref = gdal.CreateSpatialReference("")
	if err = ref.FromEPSG(srid); err != nil {
		log.Error(g.logTag+"set ref srid failed", zap.Int("srid", srid), zap.Error(err))
		ref.Destroy()
		return
	}
	// 固定数据轴次序为传统GIS坐标序(经度,纬度)，避免转换坐标系时出现次序倒置
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	g.refMap[srid] = ref
	return
}

func (g *GridToolbox) getSrid(sp gdal.SpatialReference) (srid int, err error) {
	wkt, _ := sp.ToWKT()
	rawId, ok := sp.AttrValue("AUTHORITY", 1)
	if !ok {
		// shp的prj为ESRI格式WKT，可能丢失AUTHORITY节点，按坐标系名回退
		if strings.Contains(wkt, "CGCS_2000") {
			rawId = "4490"
		} else if strings.Contains(wkt, "WGS_1984") {
			rawId = "4326"
		} else {
			err = ErrVoidSrid
			return
		}
	}
	srid, err = strconv.Atoi(rawId)
	log.Info(g.logTag+"got srid from sp", zap.String("id", rawId))
	return
}

// 校验几何集与格网坐标系一致且非空
func checkGridGeoms(grid *Grid, n int, srid int) (err error) {
	if srid != grid.Srid {
		err = ErrCRSMismatch
		return
	}
	if n == 0 {
		err = ErrEmptyGeometry
	}
	return
}
