// Package imaging prepares table photos for the detectors and cuts the
// detected cards and temples out of them.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X growing
// rightward and Y downward. Rectangles are half-open: Min is inclusive, Max
// exclusive, as with image.Rectangle.
//
// # Model Input
//
// PrepareInput renders an image into the square planar tensor the detectors
// consume. In letterbox mode the aspect ratio is kept and the borders are
// filled with mid-gray; in stretch mode each axis is resized independently.
// The returned Prepared carries the transform needed to map boxes back.
//
// # Regions
//
// ExtractRegions turns normalized detections into independent pixel copies.
// Each corner is rounded on its own, so adjacent boxes that share an edge in
// normalized space share it in pixels too.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Every other function is stateless.
package imaging
