// Package domain contains the core evidence model shared across all layers:
// evidence records, assessment state, the unit/criteria code mapping, and
// domain error sentinels.
//
// The domain layer has no dependencies on other internal packages.
package domain
