// Package pipeline executes the scoring stages for one observation in
// sequence.
//
// A scan moves through three stages: content analysis, ad-behavior
// analysis, and the final assessment merge. Each stage is a Step that
// receives the accumulated Scan state and can extend it.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
//  1. It allows easy addition/removal of steps without modifying core logic
//  2. It provides consistent error handling and logging across steps
//  3. It supports cancellation via context for large batches
//  4. The content and ad-behavior steps are independent, so the order
//     can change without semantic effect as long as assess runs last
//
// The pipeline supports both individual scans and batch processing with
// concurrency control using errgroup.
package pipeline
