package migration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_item_meta",
		SQL: `CREATE TABLE IF NOT EXISTS item_meta (
  id      BIGSERIAL PRIMARY KEY,
  item_id BIGINT    NOT NULL,
  key     TEXT      NOT NULL,
  value   TEXT      NOT NULL
);`,
	},
	{
		Name: "create_index_item_meta_lookup",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_item_meta_lookup ON item_meta (item_id, key, id);`,
	},
	{
		Name: "create_table_attachments",
		SQL: `CREATE TABLE IF NOT EXISTS attachments (
  id           BIGSERIAL   PRIMARY KEY,
  parent_id    BIGINT      NOT NULL,
  field_id     TEXT        NOT NULL,
  filename     TEXT        NOT NULL,
  storage_key  TEXT        NOT NULL UNIQUE,
  content_type TEXT        NOT NULL,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  sort_order   BIGINT      NOT NULL DEFAULT 0,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_attachments_field",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_attachments_field ON attachments (parent_id, field_id, sort_order, id);`,
	},
}

// EnsureMigrated creates the metadata and attachment tables if they do
// not exist yet. Each step is idempotent, so rerunning is safe.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger logrus.FieldLogger) error {
	for _, step := range steps {
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return fmt.Errorf("migration %s: %w", step.Name, err)
		}
		logger.WithField("step", step.Name).Debug("migration applied")
	}
	logger.Info("database schema up to date")
	return nil
}
