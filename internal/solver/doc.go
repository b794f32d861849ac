// Package solver implements scalar root finding for the closed-loop
// controllers that match foam porosity and strut content targets.
//
// The objective function wraps an invocation of an external geometry
// tool, so every evaluation is expensive and potentially fallible.
// The finder therefore evaluates each candidate exactly once, keeps
// no cache across calls, and surfaces tool failures immediately with
// the input that triggered them.
//
// Two search modes are supported: Bounded, where the caller supplies
// an interval with a guaranteed sign change, and Expanding, where the
// finder grows a bracket outward from an initial guess by doubling
// the step until a sign change appears. Both modes assume the
// objective is continuous and monotonic over the searched range.
package solver
