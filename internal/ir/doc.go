// Package ir provides the primitive value types shared by every FQL package.
//
// This package contains value definitions and their encodings only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// value layer at the bottom of the dependency graph.
//
// Key design constraints:
//   - NO float types anywhere - numbers are int64
//   - Dates are calendar dates (no time of day, no zone)
//   - IRNull is an explicit value, never a nil interface
//   - Object keys serialize in RFC 8785 order so fingerprints are stable
package ir
