package catalog

import (
	"sort"

	"github.com/example/fitgram/pkg/models"
)

// Index partitions list by muscle group. Groups are sorted ascending by name
// and each group keeps the relative order members had in list.
func Index(list []models.Exercise) []models.ExerciseGroup {
	members := make(map[string][]models.Exercise)
	names := make([]string, 0)
	for _, ex := range list {
		if _, ok := members[ex.MuscleGroup]; !ok {
			names = append(names, ex.MuscleGroup)
		}
		members[ex.MuscleGroup] = append(members[ex.MuscleGroup], ex)
	}
	sort.Strings(names)

	groups := make([]models.ExerciseGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, models.ExerciseGroup{Group: name, Exercises: members[name]})
	}
	return groups
}

// Flatten concatenates groups back into a single list
func Flatten(groups []models.ExerciseGroup) []models.Exercise {
	var list []models.Exercise
	for _, g := range groups {
		list = append(list, g.Exercises...)
	}
	return list
}

// Counts returns the number of exercises per group
func Counts(groups []models.ExerciseGroup) map[string]int {
	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		counts[g.Group] = g.Count()
	}
	return counts
}

// Find returns the group called name
func Find(groups []models.ExerciseGroup, name string) (models.ExerciseGroup, bool) {
	i := sort.Search(len(groups), func(i int) bool { return groups[i].Group >= name })
	if i < len(groups) && groups[i].Group == name {
		return groups[i], true
	}
	return models.ExerciseGroup{}, false
}

// Memo caches Index for one snapshot version
type Memo struct {
	version uint64
	valid   bool
	groups  []models.ExerciseGroup
}

// Groups returns the index of s, recomputing it when s is a different
// version than the cached one.
func (m *Memo) Groups(s Snapshot) []models.ExerciseGroup {
	if !m.valid || m.version != s.Version {
		m.groups = Index(s.Exercises)
		m.version = s.Version
		m.valid = true
	}
	return m.groups
}
