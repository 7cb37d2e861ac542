package rastvec

import (
	"fmt"
	"strings"

	"github.com/wgdzlh/rastvec/log"
	"github.com/wgdzlh/rastvec/utils"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// 获取shp的srid
func (g *GridToolbox) GetSridOfShapefile(shp string) (srid int, err error) {
	driver := gdal.OGRDriverByName(SHP_DRIVER_NAME)
	ds, ok := driver.Open(shp, 0)
	if !ok {
		err = ErrGdalDriverOpen
		return
	}
	defer ds.Destroy()
	layer := ds.LayerByIndex(0)
	return g.getSrid(layer.SpatialReference())
}

// 从shp文件解析选择集：每个要素转为一条Selector，valueField为可选的属性字段名
// （为空时Value取0），同时返回检测到的srid。要素次序与文件一致
func (g *GridToolbox) ReadSelectors(shp, valueField string) (ret []Selector, srid int, err error) {
	return g.readSelectors(shp, valueField, 0)
}

// 同ReadSelectors，但将要素坐标转换到目标srid后输出
func (g *GridToolbox) ReadSelectorsInSrid(shp, valueField string, tSrid int) (ret []Selector, srid int, err error) {
	return g.readSelectors(shp, valueField, tSrid)
}

func (g *GridToolbox) readSelectors(shp, valueField string, tSrid int) (ret []Selector, srid int, err error) {
	log.Info(g.logTag+"start parse shp", zap.String("shp", shp), zap.String("field", valueField))
	driver := gdal.OGRDriverByName(SHP_DRIVER_NAME)
	ds, ok := driver.Open(shp, 0)
	if !ok {
		err = ErrGdalDriverOpen
		return
	}
	defer ds.Destroy()
	layer := ds.LayerByIndex(0)
	if srid, err = g.getSrid(layer.SpatialReference()); err != nil {
		return
	}
	valueIdx := -1
	if valueField != "" {
		def := layer.Definition()
		if valueIdx = def.FieldIndex(valueField); valueIdx < 0 {
			// 字段名可能为GBK编码
			if gbkField, e := utils.Utf8StrToGbk(valueField); e == nil {
				valueIdx = def.FieldIndex(gbkField)
			}
			if valueIdx < 0 {
				err = fmt.Errorf(ErrColumnMissingTemplate, valueField)
				return
			}
		}
	}
	var (
		tRef    gdal.SpatialReference
		doTrans = tSrid > 0 && tSrid != srid
		feature *gdal.Feature
		wkb     []byte
		e       error
		gc      []destroyable
	)
	if doTrans {
		if tRef, err = g.getSridRef(tSrid); err != nil {
			return
		}
	}
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	ret = make([]Selector, 0, 128)
	for {
		if feature = layer.NextFeature(); feature == nil {
			break
		}
		gc = append(gc, *feature)
		geo := feature.Geometry()
		if doTrans {
			if e = geo.TransformTo(tRef); e != nil {
				log.Error(g.logTag+"feature transform failed", zap.Error(e))
				continue
			}
		}
		if wkb, e = geo.ToWKB(); e != nil {
			log.Error(g.logTag+"err in wkb convert", zap.Error(e))
			continue
		}
		sel := Selector{}
		if sel.Geom, e = ParseWkb(wkb); e != nil {
			log.Error(g.logTag+"err in wkb parse", zap.Error(e))
			continue
		}
		if valueIdx >= 0 {
			sel.Value = feature.FieldAsFloat64(valueIdx)
		}
		ret = append(ret, sel)
	}
	if len(ret) == 0 {
		err = ErrEmptyShp
		return
	}
	if doTrans {
		srid = tSrid
	}
	log.Info(g.logTag+"got selectors from shp", zap.String("shp", shp), zap.Int("cnt", len(ret)), zap.Int("srid", srid))
	return
}

// 将选择集写入shp文件，valueField为可选的属性字段名（为空时不建属性字段）
func (g *GridToolbox) WriteSelectors(shp, valueField string, srid int, sels ...Selector) (err error) {
	log.Info(g.logTag+"output selectors to shp", zap.String("shp", shp), zap.Int("srid", srid), zap.Int("cnt", len(sels)))
	driver := gdal.OGRDriverByName(SHP_DRIVER_NAME)
	ds, ok := driver.Create(shp, nil)
	if !ok {
		err = ErrGdalDriverCreate
		return
	}
	defer ds.Destroy() // 生成shp文件 + 释放资源
	ref, err := g.getSridRef(srid)
	if err != nil {
		return
	}
	layer := ds.CreateLayer("", ref, gdal.GT_Unknown, []string{ENCODING_OPTION})
	valueIdx := -1
	if valueField != "" {
		fd := gdal.CreateFieldDefinition(valueField, gdal.FT_Real)
		if err = layer.CreateField(fd, false); err != nil {
			log.Error(g.logTag+"err in create field of layer", zap.Error(err))
			return
		}
		valueIdx = layer.Definition().FieldIndex(valueField)
	}
	var (
		def     = layer.Definition()
		feature gdal.Feature
		geo     gdal.Geometry
		raw     []byte
		valid   int
		e       error
		gc      []destroyable
	)
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	for i, sel := range sels {
		feature = def.Create()
		gc = append(gc, feature)
		if e = feature.SetFID(int64(i)); e != nil {
			log.Error(g.logTag+"err in set feature fid", zap.Error(e))
			continue
		}
		if raw, e = ToWkb(sel.Geom); e != nil {
			continue
		}
		if geo, e = gdal.CreateFromWKB(raw, ref, len(raw)); e != nil {
			log.Error(g.logTag+"parse wkb failed", zap.Error(e))
			continue
		}
		if e = feature.SetGeometryDirectly(geo); e != nil {
			log.Error(g.logTag+"err in set geom of feature", zap.Error(e))
			continue
		}
		if valueIdx >= 0 {
			feature.SetFieldFloat64(valueIdx, sel.Value)
		}
		if e = layer.Create(feature); e != nil {
			log.Error(g.logTag+"err in create feature of layer", zap.Error(e))
			continue
		}
		valid++
	}
	log.Info(g.logTag+"output selectors to shp done", zap.String("shp", shp), zap.Int("total", len(sels)), zap.Int("valid", valid))
	return
}

// 从zip包中解出shp并解析选择集，cpg非UTF-8时先转换编码
func (g *GridToolbox) ReadSelectorsZip(zipFile, valueField string) (ret []Selector, srid int, err error) {
	dir, err := utils.GetUniqSubDir(g.tmpDir)
	if err != nil {
		return
	}
	shp, isUtf8, err := utils.GetShpInZip(zipFile, dir)
	if err != nil {
		log.Error(g.logTag+"get shp from zip failed", zap.String("zip", zipFile), zap.Error(err))
		return
	}
	if !isUtf8 {
		if shp, err = g.EncodingShapefile(shp, ZH_ENC, true); err != nil {
			return
		}
	}
	return g.readSelectors(shp, valueField, 0)
}

// 转换整个shp文件的文本编码
func (g *GridToolbox) EncodingShapefile(shp, cpg string, rmOld bool) (out string, err error) {
	if cpg == SHAPE_ENCODING || cpg == UTF8_ENC {
		out = shp
		return
	}
	// cpg为空，或者不为UTF-8的，都当作GBK编码处理
	sds, err := gdal.OpenEx(shp, gdal.OFVector, nil, []string{OO_ENCODING}, nil)
	if err != nil {
		log.Error(g.logTag+"open shp error", zap.Error(err))
		return
	}
	defer sds.Close()
	log.Info(g.logTag+"start encoding shp", zap.String("shp", shp), zap.String("cpg", cpg))
	prefix := strings.TrimSuffix(shp, FILE_EXT_SHP)
	out = prefix + fmt.Sprintf("_%s"+FILE_EXT_SHP, cpg)
	dds, err := gdal.VectorTranslate(out, []gdal.Dataset{sds}, []string{"-lco", ENCODING_OPTION})
	if err != nil {
		log.Error(g.logTag + "VectorTranslate failed")
		return
	}
	dds.Close() // 生成转换后的shp文件
	if rmOld {
		if e := sds.Driver().DeleteDataset(shp); e != nil {
			log.Info(g.logTag+"delete old shp failed", zap.Error(e))
		}
	}
	log.Info(g.logTag+"end encoding shp", zap.String("shp", out))
	return
}
