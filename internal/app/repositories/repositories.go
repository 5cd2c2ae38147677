package repositories

import (
	"github.com/yigit/schoolhub/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	StudentRepository StudentStore
	ClassRepository   ClassStore
}

// NewRepositories initializes the Postgres-backed repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		StudentRepository: NewStudentRepository(database),
		ClassRepository:   NewClassRepository(database),
	}
}
