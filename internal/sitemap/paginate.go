package sitemap

// PageCount is ceil(n/size), or 0 for empty input.
func PageCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// SubPages is the number of pages after the hub page: max(0, ceil(k/p)-1).
func SubPages(k, p int) int {
	if c := PageCount(k, p); c > 1 {
		return c - 1
	}
	return 0
}
