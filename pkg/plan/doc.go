// Package plan provides the layout planner facade and the serializable
// request/plan types that cross the engine boundary.
//
// A Planner accepts an ordered batch of placement requests, validates
// explicit positions, searches for the rest with placement strategies,
// registers accepted placements into its tracker, and reports every
// per-object outcome in a Plan. Failed requests are never registered;
// the engine does not substitute guessed positions.
package plan
