// Package sitemap builds the sitemap of the station directory site.
//
// Build is a pure function of the station list and Options: it emits static
// pages, the paginated home and high-quality listings, one hub plus sub-pages
// per city, region and genre bucket, and one URL per station. Bucket slugs are
// unique per kind and are assigned in first-seen order by a slug.Registry
// owned by the Facets value, so nothing is shared between builds.
//
// The full document is assembled in memory; Encode only runs on a complete
// result, so callers never observe a partially written sitemap.
package sitemap
