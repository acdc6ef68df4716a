package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Dialect selects the DDL flavour used by Migrate. Queries themselves are
// shared across dialects.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

// schema lists the tables in creation order. {{TS}}, {{MONEY}} and {{SEQ}}
// are replaced per dialect.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS parcels (
		id                   VARCHAR(36)  NOT NULL PRIMARY KEY,
		created_by           VARCHAR(255) NOT NULL,
		tracking_id          VARCHAR(64)  NULL,
		payment_status       VARCHAR(16)  NOT NULL,
		delivery_status      VARCHAR(32)  NOT NULL,
		assigned_rider_id    VARCHAR(36)  NULL,
		assigned_rider_email VARCHAR(255) NULL,
		assigned_rider_name  VARCHAR(255) NULL,
		cashout_status       VARCHAR(16)  NOT NULL,
		created_at           {{TS}}       NOT NULL,
		assigned_at          {{TS}}       NULL,
		picked_at            {{TS}}       NULL,
		delivered_at         {{TS}}       NULL,
		cashed_out_at        {{TS}}       NULL,
		details              TEXT         NULL
	)`,
	`CREATE INDEX idx_parcels_created_by ON parcels (created_by)`,
	`CREATE INDEX idx_parcels_rider ON parcels (assigned_rider_email, delivery_status)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id             VARCHAR(36)  NOT NULL PRIMARY KEY,
		parcel_id      VARCHAR(36)  NOT NULL,
		amount         {{MONEY}}    NOT NULL,
		transaction_id VARCHAR(255) NOT NULL,
		created_by     VARCHAR(255) NOT NULL,
		payment_method VARCHAR(255) NULL,
		paid_at_string VARCHAR(40)  NOT NULL,
		paid_at        {{TS}}       NOT NULL
	)`,
	`CREATE INDEX idx_payments_created_by ON payments (created_by, paid_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		id             VARCHAR(36)  NOT NULL PRIMARY KEY,
		email          VARCHAR(255) NOT NULL UNIQUE,
		name           VARCHAR(255) NULL,
		role           VARCHAR(16)  NOT NULL,
		created_at     {{TS}}       NOT NULL,
		last_logged_in {{TS}}       NULL,
		details        TEXT         NULL
	)`,
	`CREATE TABLE IF NOT EXISTS riders (
		id          VARCHAR(36)  NOT NULL PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		email       VARCHAR(255) NOT NULL,
		district    VARCHAR(128) NOT NULL,
		status      VARCHAR(16)  NOT NULL,
		work_status VARCHAR(16)  NOT NULL,
		created_at  {{TS}}       NOT NULL,
		details     TEXT         NULL
	)`,
	`CREATE INDEX idx_riders_status ON riders (status, district)`,
	`CREATE TABLE IF NOT EXISTS trackings (
		seq         {{SEQ}},
		id          VARCHAR(36)  NOT NULL UNIQUE,
		tracking_id VARCHAR(64)  NOT NULL,
		status      VARCHAR(64)  NOT NULL,
		event_at    {{TS}}       NOT NULL,
		details     TEXT         NULL
	)`,
	`CREATE INDEX idx_trackings_tracking_id ON trackings (tracking_id, event_at)`,
}

func ddl(d Dialect, stmt string) string {
	var r *strings.Replacer
	switch d {
	case SQLite:
		// go-sqlite3 only decodes columns declared exactly DATETIME into time.Time
		r = strings.NewReplacer("{{TS}}", "DATETIME", "{{MONEY}}", "TEXT",
			"{{SEQ}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
			"CREATE INDEX", "CREATE INDEX IF NOT EXISTS")
	default:
		r = strings.NewReplacer("{{TS}}", "DATETIME(6)", "{{MONEY}}", "DECIMAL(12,2)",
			"{{SEQ}}", "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY")
	}
	return r.Replace(stmt)
}

// Migrate creates the schema. It is safe to run repeatedly: tables use IF
// NOT EXISTS and, on MySQL, duplicate index errors are ignored.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, ddl(d, stmt)); err != nil {
			if d == MySQL && isDuplicateIndex(err) {
				continue
			}
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func isDuplicateIndex(err error) bool {
	// 1061: ER_DUP_KEYNAME
	return strings.Contains(err.Error(), "1061")
}
