// Package services implements the driving port interfaces.
// Services contain the core logic and orchestrate calls to driven
// ports (adapters): the index build pipeline, retrieval over the
// loaded snapshot, query routing, and the answer pipeline.
//
// Services are pure Go with no CGO.
package services
