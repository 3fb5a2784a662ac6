// Package raster wraps gdalwarp behind the clip/fill/write contract used by
// the download pipeline. The transformer is injected as an interface so the
// executor and its tests never depend on GDAL being installed.
package raster
