package models

// Employee is the roster entry the engine computes attendance for.
// Individual pattern assignments take priority over department defaults;
// the repository returns PatternIDs already ordered by that precedence.
type Employee struct {
	ID           string   `db:"id" json:"id"`
	FullName     string   `db:"full_name" json:"full_name"`
	DepartmentID *string  `db:"department_id" json:"department_id,omitempty"`
	PatternIDs   []string `db:"-" json:"pattern_ids"`
	// DepartmentGraceMinutes is the legacy per-department fallback in the
	// grace resolution chain.
	DepartmentGraceMinutes *int `db:"department_grace_minutes" json:"department_grace_minutes,omitempty"`
}

// Pagination carries standard list metadata on HTTP responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
