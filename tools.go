//go:build tools

package tools

// Keeps the enumer code generator pinned in go.mod for go:generate runs.
import (
	_ "github.com/dmarkham/enumer"
)
