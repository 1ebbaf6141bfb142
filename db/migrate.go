package db

import (
	"database/sql"
	"fmt"

	"github.com/prem22k/c3-backend/logger"
)

const createRegistrationsTableSQL = `
CREATE TABLE IF NOT EXISTS registrations (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    mobile TEXT NOT NULL,
    roll_number TEXT NOT NULL,
    department TEXT NOT NULL,
    year TEXT NOT NULL,
    interests JSONB NOT NULL DEFAULT '[]',
    experience TEXT NOT NULL DEFAULT '',
    expectations TEXT NOT NULL DEFAULT '',
    referral TEXT NOT NULL DEFAULT '',
    registration_id TEXT NOT NULL,
    email_sent BOOLEAN NOT NULL DEFAULT FALSE,
    email_sent_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL
);`

const createRegistrationsMobileIndexSQL = `
CREATE INDEX IF NOT EXISTS registrations_mobile_idx ON registrations (mobile);`

const createRecruitmentTableSQL = `
CREATE TABLE IF NOT EXISTS recruitment (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    mobile TEXT NOT NULL,
    passing_out_year TEXT NOT NULL,
    problem_unlocked TEXT NOT NULL DEFAULT '',
    submitted_solution BOOLEAN NOT NULL DEFAULT FALSE,
    source TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL
);`

// RunMigrations creates the registrations and recruitment tables.
func RunMigrations(conn *sql.DB) error {
	if conn == nil {
		return fmt.Errorf("database connection is nil, call Open first")
	}

	if _, err := conn.Exec(createRegistrationsTableSQL); err != nil {
		return fmt.Errorf("error running registrations table migration: %w", err)
	}
	if _, err := conn.Exec(createRegistrationsMobileIndexSQL); err != nil {
		return fmt.Errorf("error running registrations index migration: %w", err)
	}
	if _, err := conn.Exec(createRecruitmentTableSQL); err != nil {
		return fmt.Errorf("error running recruitment table migration: %w", err)
	}

	logger.Log.Info("[db] Migrations completed successfully.")
	return nil
}
