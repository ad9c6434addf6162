package memstore

import (
	"strings"

	"github.com/mlinyun/Peekpa/pkg/errx"
)

func isNotFound(err error) bool {
	return errx.IsType(err, errx.TypeNotFound)
}

// containsFold reports whether any field contains the lowercased needle
func containsFold(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// window clamps a "first n" request to the number of rows
func window(total, n int) int {
	if n < 0 || n > total {
		return total
	}
	return n
}
