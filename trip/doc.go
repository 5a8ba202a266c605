// Package trip holds the value types shared by the matchers and the feed
// reconciler: the parsed compact trip identifier embedded in both static and
// realtime trip ids, and a static trip activated on one service date.
package trip
