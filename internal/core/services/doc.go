// Package services contains the engine's core workflows: the evidence
// service orchestrating uploads, listings, assessments and deletes over a
// document store, and the watch service synchronizing a local inbox.
package services
