// Package object defines the opaque object references that query operations rank.
//
// An Object only has to provide an identity, a locator and a distance to
// another object of the same kind. Everything else is an optional capability
// discovered by type assertion:
//
//   - Cloner: deep copy for answers that must own their objects
//   - SurplusClearer: drop auxiliary data (e.g. precomputed pivot distances)
//   - PrecomputedFilter: cheap lower-bound exclusion before the real distance
//   - Composite: decomposition into sub-objects with per-sub distances
//   - DataEqualer: content equality independent of identity
//   - Recordable: codec-neutral wire form (see Record)
//
// Vector, Meta and NoData are the built-in implementations.
package object
