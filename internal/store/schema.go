package store

import "context"

// The schema is applied with idempotent statements so migrate can run on every
// start. Foreign keys are intentionally NOT declared as constraints: the
// application enforces referential integrity with pre-insert existence checks
// inside each batch transaction, so the tables stay plain.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT NOT NULL,
		registration_date DATE NOT NULL,
		user_type TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fines (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		reason TEXT NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		amount NUMERIC(10,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS publishers (
		id BIGSERIAL PRIMARY KEY,
		publisher_name TEXT NOT NULL,
		country TEXT NOT NULL,
		foundation_year INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		category TEXT NOT NULL,
		publication_year INT NOT NULL,
		status TEXT NOT NULL,
		type TEXT NOT NULL,
		publisher_id BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		event_name TEXT NOT NULL,
		description TEXT NOT NULL,
		event_date DATE NOT NULL,
		event_type TEXT NOT NULL,
		capacity INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		id BIGSERIAL PRIMARY KEY,
		book_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		loan_date DATE NOT NULL,
		return_date DATE,
		renewals INT NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		librarian_id BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS event_registrations (
		id BIGSERIAL PRIMARY KEY,
		event_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		registration_date DATE NOT NULL
	)`,
}

// Migrate creates the seven entity tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return failed("apply schema", err)
		}
	}
	s.logger.Info("schema up to date", "tables", len(schemaStatements))
	return nil
}
