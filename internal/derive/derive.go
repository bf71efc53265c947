// Package derive computes view structures from a snapshot of todos.
//
// Every function here is pure: the input slice is never mutated and results
// depend only on the input, never on the clock.
package derive

import (
	"sort"

	"github.com/dori/tempo/internal/model"
)

// SortChronological returns todos ordered by ascending updatedAt.
// Todos with equal updatedAt keep their input order.
func SortChronological(todos []model.Todo) []model.Todo {
	out := make([]model.Todo, len(todos))
	copy(out, todos)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out
}

// Partition splits todos into completed and uncompleted, preserving order
func Partition(todos []model.Todo) (completed, uncompleted []model.Todo) {
	completed = []model.Todo{}
	uncompleted = []model.Todo{}
	for _, t := range todos {
		if t.Status {
			completed = append(completed, t)
		} else {
			uncompleted = append(uncompleted, t)
		}
	}
	return completed, uncompleted
}

// Groups maps a date key to the todos updated on that date.
// Keys lists each date once, in order of first occurrence.
type Groups struct {
	Keys  []string
	ByKey map[string][]model.Todo
}

// Len returns the number of groups
func (g Groups) Len() int {
	return len(g.Keys)
}

// Count returns the total number of todos across all groups
func (g Groups) Count() int {
	n := 0
	for _, k := range g.Keys {
		n += len(g.ByKey[k])
	}
	return n
}

// GroupByDate buckets todos by the UTC calendar date of updatedAt
func GroupByDate(todos []model.Todo) Groups {
	g := Groups{
		Keys:  []string{},
		ByKey: make(map[string][]model.Todo),
	}
	for _, t := range todos {
		key := model.DateKey(t.UpdatedAt)
		if _, ok := g.ByKey[key]; !ok {
			g.Keys = append(g.Keys, key)
		}
		g.ByKey[key] = append(g.ByKey[key], t)
	}
	return g
}

// Section is one rendered block of the list: the todos of one status
// grouped by date.
type Section struct {
	Completed bool
	Groups    Groups
}

// Sections sorts todos chronologically, partitions them and groups each
// partition by date. Uncompleted comes first.
func Sections(todos []model.Todo) []Section {
	completed, uncompleted := Partition(SortChronological(todos))
	return []Section{
		{Completed: false, Groups: GroupByDate(uncompleted)},
		{Completed: true, Groups: GroupByDate(completed)},
	}
}
