// AngelaMos | 2026
// schema.go

package unified

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Schema describes how an implementation maps onto storage. It is kept apart
// from the capability interfaces so a richer implementation can add columns
// without touching the contract.
type Schema struct {
	Table   string
	Columns []string
}

var (
	RequiredUserColumns = []string{
		"id", "uuid", "name", "email", "username",
		"status", "type", "workspace_id",
		"created_ts", "modified_ts",
	}

	RequiredWorkspaceColumns = []string{
		"id", "uuid", "name", "status",
		"created_ts", "modified_ts",
	}
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Validate reports a configuration error when the table name is unusable or
// any of the required columns is missing.
func (s Schema) Validate(required []string) error {
	if !identifierPattern.MatchString(s.Table) {
		return fmt.Errorf("%w: invalid table name %q", ErrInvalidImplementation, s.Table)
	}

	var missing []string
	for _, col := range required {
		if !slices.Contains(s.Columns, col) {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf(
			"%w: table %s is missing columns [%s]",
			ErrInvalidImplementation,
			s.Table,
			strings.Join(missing, ", "),
		)
	}

	return nil
}

// SelectList renders the column list for SELECT and RETURNING clauses.
func (s Schema) SelectList() string {
	return strings.Join(s.Columns, ", ")
}
