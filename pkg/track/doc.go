// Package track implements the in-memory spatio-temporal index at the
// heart of the layout engine.
//
// A Tracker owns a set of tracked objects, each a bounding box occupied
// during a half-open time window [start, end). Its core contract: for any
// two accepted objects whose windows intersect, their margin-expanded
// boxes never overlap. Registration is atomic - a rejected request leaves
// the index untouched.
//
// Trackers are scoped to a single layout job and are not safe for
// concurrent use; a host running jobs in parallel must give each job its
// own Tracker.
package track
