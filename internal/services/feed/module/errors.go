package module

import perr "herald/internal/platform/errors"

func invalidLimit(s string) error {
	return perr.InvalidArgf("limit must be a positive integer, got %q", s)
}
