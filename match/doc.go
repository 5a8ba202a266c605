// Package match decides whether a realtime trip update corresponds to a
// trip in the static schedule.
//
// Two strategies implement the Matcher contract. ScanningMatcher scans every
// static trip sharing route and direction across up to two service days and
// scores each candidate. IndexedMatcher precomputes the statically-active
// trips for a schedule window from an interval index built once at startup
// and searches only that set. The two strategies follow the same scoring
// rules but are not guaranteed to agree on every edge case; the scanning
// strategy is the one the feed reconciler uses by default.
package match
