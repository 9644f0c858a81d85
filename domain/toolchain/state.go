package toolchain

// ResolutionState is a step in the dependency resolution sequence. The
// Tried* states name the strategy currently being attempted.
type ResolutionState int

const (
	Unresolved ResolutionState = iota
	TriedLocate
	TriedPackageManager
	TriedArchive
	Resolved
	Unavailable
)

// String returns the string representation of the state
func (s ResolutionState) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case TriedLocate:
		return "tried-locate"
	case TriedPackageManager:
		return "tried-package-manager"
	case TriedArchive:
		return "tried-archive"
	case Resolved:
		return "resolved"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further strategies follow s
func (s ResolutionState) Terminal() bool {
	return s == Resolved || s == Unavailable
}

// Next returns the state that follows s once the strategy attempted in s has
// finished. A successful strategy always moves to Resolved. Unavailable moves
// back to Unresolved so a later call probes again.
func Next(s ResolutionState, succeeded bool) ResolutionState {
	if succeeded && s != Resolved && s != Unavailable {
		return Resolved
	}

	switch s {
	case Unresolved:
		return TriedLocate
	case TriedLocate:
		return TriedPackageManager
	case TriedPackageManager:
		return TriedArchive
	case TriedArchive:
		return Unavailable
	case Unavailable:
		return Unresolved
	default:
		return s
	}
}
