package rastvec

import "errors"

var (
	ErrCRSMismatch      = errors.New("geometry and grid CRS mismatch")
	ErrEmptyGeometry    = errors.New("empty geometry collection")
	ErrEmptyWindow      = errors.New("crop window is empty")
	ErrInvalidTransform = errors.New("invalid geo transform")
	ErrGridSize         = errors.New("invalid grid size")
	ErrUnknownStat      = errors.New("unknown statistic name")
	ErrEmptyZone        = errors.New("zone has no valid cells")
	ErrInvalidWKT       = errors.New("invalid WKT")
	ErrInvalidWKB       = errors.New("invalid WKB")
	ErrGdalDriverCreate = errors.New("gdal driver create err")
	ErrGdalDriverOpen   = errors.New("gdal driver open err")
	ErrEmptyShp         = errors.New("gdal shp is empty")
	ErrVoidSrid         = errors.New("gdal shp with void srid")
	ErrInvalidTif       = errors.New("invalid tif")
	ErrWrongTif         = errors.New("wrong tif")
	ErrTifReadFailed    = errors.New("tif read failed")
	ErrTifWriteFailed   = errors.New("tif write failed")
)
