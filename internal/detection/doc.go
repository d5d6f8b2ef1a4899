// Package detection decodes the raw output of single-stage object detectors
// into calibrated, de-duplicated boxes, and keeps the registry of loaded models.
//
// # Output Tensor
//
// Models emit one tensor of shape [1, 4+N, K]: K candidate boxes, each with
// a center-form box (xc, yc, w, h) in model-input pixels followed by N class
// scores. The decoder commits every candidate to its best class (one label
// per box) and runs class-agnostic greedy non-maximum suppression.
//
// # Coordinate System
//
// Decoded boxes are [xmin, ymin, xmax, ymax] normalized to [0, 1] in the
// source image, with (0, 0) at the top-left corner. When the model input was
// letterboxed the padding and scale are inverted first; when it was stretched
// the coordinates are divided by the input size.
//
// # Buffers
//
// Intermediate buffers come from a bounded Pool and are checked out through a
// Scope. Every decode closes its scope before returning, on success and on
// error, so Pool.Outstanding is zero between calls.
//
// # Models
//
// The network itself is opaque: a Model turns an input tensor into an output
// tensor. A Registry maps names to loaded models; it starts empty, gains an
// entry on the first successful load of a name, and never drops entries.
package detection
