// Package onnx runs detector models with ONNX Runtime.
//
// The runtime is a shared library loaded at process start; its location is
// configured with onnx_library (or the ONNXRUNTIME_LIB environment
// variable). Each loaded model owns one session. Output tensors are handed
// to the caller without copying and are destroyed when the caller releases
// them.
//
// # Requirements
//
// Building this package requires cgo. Running it requires the ONNX Runtime
// shared library matching the onnxruntime_go version in go.mod.
package onnx
