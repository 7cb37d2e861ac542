package rastvec

const (
	FILE_EXT_SHP    = ".shp"
	FILE_EXT_JSON   = ".json"
	SHAPE_ENCODING  = "UTF-8"
	UTF8_ENC        = "UTF8"
	ZH_ENC          = "GBK"
	SHP_DRIVER_NAME = "ESRI Shapefile"
	ENCODING_OPTION = "ENCODING=" + SHAPE_ENCODING
	OO_ENCODING     = "ENCODING=" + ZH_ENC
	UNIVERSAL_SRID  = 4326

	ErrColumnMissingTemplate = `shp文件中缺失【%s】字段`

	StatCount    = "count"
	StatNodata   = "nodata"
	StatMean     = "mean"
	StatSum      = "sum"
	StatMin      = "min"
	StatMax      = "max"
	StatMedian   = "median"
	StatMajority = "majority"

	DefaultFill = 0.0

	TMP_GEOJSON = "cutline_%s.json"
)
