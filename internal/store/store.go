// Package store holds the repository-style query functions. Handlers go
// through these instead of traversing ORM relationships so every query is
// explicit and listing endpoints stay free of per-row lookups.
package store

import (
	"gorm.io/gorm"
)

const MaxPerPage = 100

type Store struct {
	conn *gorm.DB
}

func New(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

// Transaction runs fn against a Store bound to a single database
// transaction. Any error rolls the whole unit of work back.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.conn.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{conn: tx})
	})
}

// Ping reports store reachability for the health endpoint.
func (s *Store) Ping() error {
	sqlDB, err := s.conn.DB()

	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

// ClampPage normalizes pagination parameters.
func ClampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}

	if perPage < 1 {
		perPage = 20
	}

	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	return page, perPage
}
