package models

type FixAction int

const (
	AlreadyPresent FixAction = iota
	Added
	Normalized
)

func (a FixAction) String() string {
	switch a {
	case AlreadyPresent:
		return "already present"
	case Added:
		return "added"
	case Normalized:
		return "normalized"
	default:
		return "unknown"
	}
}

type FixResult struct {
	Path   string
	Action FixAction
	// Diff is only set on dry runs that would change the file.
	Diff string
}

func (r FixResult) Changed() bool {
	return r.Action != AlreadyPresent
}
