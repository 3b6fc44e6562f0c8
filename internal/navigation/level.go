package navigation

import "fmt"

// Kind is the view depth of a level
type Kind int

const (
	CatalogRoot Kind = iota
	GroupDetail
	ExerciseDetail
)

func (k Kind) String() string {
	switch k {
	case CatalogRoot:
		return "catalog"
	case GroupDetail:
		return "group"
	case ExerciseDetail:
		return "exercise"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Level is one position in the view stack
type Level struct {
	Kind       Kind
	Group      string
	ExerciseID int64
}

// Root is the initial level of every session
func Root() Level { return Level{Kind: CatalogRoot} }

// Group is the detail level of a muscle group
func Group(name string) Level { return Level{Kind: GroupDetail, Group: name} }

// Exercise is the detail level of a single exercise
func Exercise(id int64) Level { return Level{Kind: ExerciseDetail, ExerciseID: id} }

// BackVisible reports whether the host back control is shown on this level
func (l Level) BackVisible() bool {
	return l.Kind != CatalogRoot
}

func (l Level) String() string {
	switch l.Kind {
	case GroupDetail:
		return fmt.Sprintf("group(%s)", l.Group)
	case ExerciseDetail:
		return fmt.Sprintf("exercise(%d)", l.ExerciseID)
	}
	return l.Kind.String()
}
