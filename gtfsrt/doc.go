// Package gtfsrt fetches and decodes GTFS-Realtime trip update feeds,
// including the NYCT extension fields carried in the feed header and trip
// descriptors.
package gtfsrt
