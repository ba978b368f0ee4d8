package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// student_profiles.account_id has no foreign key. The delete flow removes the
// account and the profile in two separate statements.
const migration001Up = `
CREATE TABLE IF NOT EXISTS accounts (
    id UUID PRIMARY KEY,
    email TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role VARCHAR(16) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    CONSTRAINT accounts_email_key UNIQUE (email),
    CONSTRAINT valid_role CHECK (role IN ('admin', 'student'))
);

CREATE TABLE IF NOT EXISTS student_profiles (
    id UUID PRIMARY KEY,
    account_id UUID NOT NULL,
    email TEXT NOT NULL,
    full_name TEXT NOT NULL,
    department TEXT NOT NULL,
    project TEXT,
    skills TEXT[] NOT NULL DEFAULT '{}',
    school TEXT NOT NULL DEFAULT '',
    course TEXT NOT NULL DEFAULT '',
    year_level TEXT NOT NULL DEFAULT '',
    contact_number TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    start_date TEXT NOT NULL DEFAULT '',
    end_date TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_student_profiles_account_id ON student_profiles(account_id);
CREATE INDEX IF NOT EXISTS idx_student_profiles_created_at ON student_profiles(created_at DESC);
`

var migrations = []struct {
	name string
	up   string
}{
	{name: "001_accounts_and_profiles", up: migration001Up},
}

// Migrate applies the idempotent schema statements in order.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.up); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}
