package models

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TableRecord is a stored table layout. Layout holds the JSON document
// decoded by table.Parse.
type TableRecord struct {
	ID        int64          `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Layout    types.JSONText `db:"layout" json:"layout,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// Operator is an account allowed to actuate running sessions.
type Operator struct {
	ID           int64        `db:"id" json:"id"`
	Username     string       `db:"username" json:"username"`
	PasswordHash string       `db:"password_hash" json:"-"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	LastLoginAt  sql.NullTime `db:"last_login_at" json:"last_login_at,omitempty"`
}

// SessionLog summarizes a finished session.
type SessionLog struct {
	ID        string        `db:"id" json:"id"`
	TableID   sql.NullInt64 `db:"table_id" json:"table_id,omitempty"`
	TableName string        `db:"table_name" json:"table_name"`
	Frames    int64         `db:"frames" json:"frames"`
	Events    int64         `db:"events" json:"events"`
	StartedAt time.Time     `db:"started_at" json:"started_at"`
	EndedAt   time.Time     `db:"ended_at" json:"ended_at"`
}
