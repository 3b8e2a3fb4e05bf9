// Package slug turns free-text station, city, region and genre names into
// URL path segments.
//
// Make transliterates Greek to Latin, strips diacritics, lowercases and
// collapses everything that is not [a-z0-9] into single hyphens, bounded to
// MaxLength bytes. A Registry hands out unique slugs within one namespace
// (stations, cities, regions or genres) in first-seen order.
package slug
