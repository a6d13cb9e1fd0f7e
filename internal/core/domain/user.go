package domain

import (
	"time"
)

type User struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time
}

func (u *User) IsPersisted() bool {
	return u.ID != 0
}
