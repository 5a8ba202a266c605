// Package reconcile drives one polling cycle of trip reconciliation: it
// filters and regroups a realtime feed, matches each trip update against
// the static schedule through a match.Matcher, merges split reports, and
// rewrites the surviving updates into canonical form.
package reconcile
