// Package specialize compiles and memoizes bloom pipeline variants.
//
// A variant is selected by a small comparable key derived from a view's
// settings: the downsampling key folds in prefiltering, first-mip
// handling, and scale uniformity; the upsampling key folds in the
// composite mode and whether the pass writes the final output. Equal
// keys always resolve to the same compiled pipeline.
//
// The Cache is the only concurrency-aware piece of the module: it is
// shared across frames and may be warmed from loader goroutines, so
// lookups synchronize internally. Compiled pipelines are handed to the
// frame graph through Builder.ImportPipeline; the cache keeps ownership
// and releases everything in Destroy.
package specialize
