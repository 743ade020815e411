package util

const (
	// DefaultPageLimit applies when the caller sends no limit at all.
	DefaultPageLimit = 10

	maxPageLimit = 100
)

// NormalizePagination clamps caller-supplied paging values into a usable
// range: limit within [1,100], offset floored at 0. It never rejects
// input; garbage simply becomes the nearest sane value. Absent or
// unparseable parameters should be given as DefaultPageLimit / 0 by the
// caller before clamping.
func NormalizePagination(limit, offset int) (int, int) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
