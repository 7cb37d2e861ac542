package rastvec

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/wgdzlh/rastvec/log"

	gdal "github.com/airbusgeo/godal"
	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

var registerOnce sync.Once

func registerDrivers() {
	registerOnce.Do(gdal.RegisterAll)
}

// 读取Tif指定波段（序号从0开始）为格网
func (g *GridToolbox) ReadGrid(tif string, band int) (grid *Grid, err error) {
	registerDrivers()
	sds, err := gdal.Open(tif, gdal.RasterOnly())
	if err != nil {
		log.Error(g.logTag+"open tif failed", zap.Error(err))
		err = ErrInvalidTif
		return
	}
	defer sds.Close()
	tifBands := sds.Bands()
	if bc := len(tifBands); band < 0 || band >= bc {
		log.Error(g.logTag+"tif bands not enough", zap.Int("bands", bc), zap.Int("want", band))
		err = ErrWrongTif
		return
	}
	bandStruct := tifBands[band].Structure()
	x := bandStruct.SizeX
	y := bandStruct.SizeY
	gt, err := sds.GeoTransform()
	if err != nil || !GeoTransform(gt).Invertible() {
		log.Error(g.logTag+"tif geo transform unusable", zap.Error(err))
		err = ErrInvalidTransform
		return
	}
	log.Info(g.logTag+"read tif band", zap.Int("band", band), zap.Int("width", x), zap.Int("height", y))
	buf := make([]float64, x*y)
	if err = tifBands[band].IO(gdal.IORead, 0, 0, buf, x, y); err != nil {
		log.Error(g.logTag+"read tif band failed", zap.Int("band", band), zap.Error(err))
		err = ErrTifReadFailed
		return
	}
	noData, ok := tifBands[band].NoData()
	if !ok {
		noData = math.NaN()
	}
	grid = &Grid{
		Values:       buf,
		Width:        x,
		Height:       y,
		GeoTransform: GeoTransform(gt),
		NoData:       noData,
		Srid:         sridOfRaster(sds),
	}
	return
}

// 将格网写出为GTiff（LZW压缩）
func (g *GridToolbox) WriteGrid(grid *Grid, out string) (err error) {
	registerDrivers()
	ds, err := gdal.Create(gdal.GTiff, out, 1, gdal.Float64, grid.Width, grid.Height,
		gdal.CreationOption("COMPRESS=LZW"))
	if err != nil {
		log.Error(g.logTag+"create tif failed", zap.String("out", out), zap.Error(err))
		err = ErrGdalDriverCreate
		return
	}
	defer ds.Close()
	if err = ds.SetGeoTransform([6]float64(grid.GeoTransform)); err != nil {
		err = ErrTifWriteFailed
		return
	}
	if grid.Srid > 0 {
		sr, e := gdal.NewSpatialRefFromEPSG(grid.Srid)
		if e == nil {
			ds.SetSpatialRef(sr)
			sr.Close()
		}
	}
	if !math.IsNaN(grid.NoData) {
		ds.SetNoData(grid.NoData)
	}
	if err = ds.Bands()[0].Write(0, 0, grid.Values, grid.Width, grid.Height); err != nil {
		log.Error(g.logTag+"write tif band failed", zap.Error(err))
		err = ErrTifWriteFailed
	}
	log.Info(g.logTag+"grid written", zap.String("out", out), zap.Bool("succeed", err == nil))
	return
}

// 按WKT面要素对磁盘上的栅格做裁剪（掩膜+裁剪的文件形态，与内存Mask语义对应）
func (g *GridToolbox) CropRasterWkt(tif, wktStr, out string) (err error) {
	registerDrivers()
	geom, err := ParseWkt(wktStr)
	if err != nil {
		return
	}
	gj, err := geojson.NewGeometry(geom).MarshalJSON()
	if err != nil {
		return
	}
	tmpGeoJson := filepath.Join(g.tmpDir, fmt.Sprintf(TMP_GEOJSON, uuid.NewString()))
	if err = os.WriteFile(tmpGeoJson, gj, os.ModePerm); err != nil {
		return
	}
	defer os.Remove(tmpGeoJson)
	sds, err := gdal.Open(tif, gdal.RasterOnly())
	if err != nil {
		log.Error(g.logTag+"open tif failed", zap.Error(err))
		err = ErrInvalidTif
		return
	}
	defer sds.Close()
	log.Info(g.logTag+"crop raster", zap.String("tif", tif), zap.String("out", out))
	ods, err := sds.Warp(out, []string{"-cutline", tmpGeoJson, "-crop_to_cutline", "-overwrite"})
	if err != nil {
		log.Error(g.logTag+"failed to crop raster", zap.Error(err))
		return
	}
	ods.Close()
	return
}

// 提取栅格数据集的srid，缺失AUTHORITY节点时按WKT内容兜底
func sridOfRaster(sds *gdal.Dataset) (srid int) {
	sr := sds.SpatialRef()
	if sr == nil {
		return
	}
	rawId := sr.AuthorityCode("")
	if rawId == "" {
		if wkt, _ := sr.WKT(); strings.Contains(wkt, "CGCS_2000") {
			rawId = "4490"
		} else {
			return
		}
	}
	srid, _ = strconv.Atoi(rawId)
	return
}
