package factory

import (
	"fmt"
	"sync/atomic"
	"time"

	fab "github.com/Goldziher/fabricator"

	"doitnow/internal/core/domain"
)

var sequence atomic.Int64

func init() {
	sequence.Store(time.Now().UnixMilli() % 1_000_000)
}

func next() int64 {
	return sequence.Add(1)
}

// NewTodo builds an unsaved todo with a unique entity id and no owner. Keys
// in customData override fields by name.
func NewTodo(customData ...map[string]any) domain.Todo {
	todo := fab.New(domain.Todo{}).Build(customData...)
	n := next()

	defaults := map[string]func(){
		"ID":        func() { todo.ID = 0 },
		"EntityID":  func() { todo.EntityID = n },
		"Title":     func() { todo.Title = fmt.Sprintf("Todo %d", n) },
		"Completed": func() { todo.Completed = false },
		"Priority":  func() { todo.Priority = domain.DefaultPriority },
		"DueDate":   func() { todo.DueDate = nil },
		"UserID":    func() { todo.UserID = nil },
		"CreatedAt": func() { todo.CreatedAt = time.Time{} },
		"UpdatedAt": func() { todo.UpdatedAt = time.Time{} },
	}

	applyDefaults(defaults, customData)

	return todo
}

func applyDefaults(defaults map[string]func(), customData []map[string]any) {
	for field, apply := range defaults {
		if !overridden(field, customData) {
			apply()
		}
	}
}

func overridden(field string, customData []map[string]any) bool {
	for _, data := range customData {
		if _, ok := data[field]; ok {
			return true
		}
	}

	return false
}
