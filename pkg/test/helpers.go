package test

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"doitnow/internal/adapter/database/sqlite"
)

// InitTestDB opens a private in-memory database with the schema applied.
// Every call gets its own database, so tests never see each other's rows.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.New(context.Background(), sqlite.Options{
		Path:     fmt.Sprintf("file:test_%s?mode=memory&cache=shared", uuid.NewString()),
		Name:     "doitnow_test",
		LogLevel: "disabled",
	})
	if err != nil {
		log.Fatal(err)
	}

	return db
}

func Ptr[T any](v T) *T {
	return &v
}
