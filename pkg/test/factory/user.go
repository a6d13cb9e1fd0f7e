package factory

import (
	"fmt"
	"time"

	fab "github.com/Goldziher/fabricator"

	"doitnow/internal/core/domain"
)

// NewUser builds an unsaved user with unique username and email. Keys in
// customData override fields by name.
func NewUser(customData ...map[string]any) domain.User {
	user := fab.New(domain.User{}).Build(customData...)
	n := next()

	defaults := map[string]func(){
		"ID":        func() { user.ID = 0 },
		"Username":  func() { user.Username = fmt.Sprintf("user_%d", n) },
		"Email":     func() { user.Email = fmt.Sprintf("user_%d@example.com", n) },
		"CreatedAt": func() { user.CreatedAt = time.Time{} },
	}

	applyDefaults(defaults, customData)

	return user
}
