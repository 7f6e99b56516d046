package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/mwantia/treefs/backend"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteBackend persists filesystems, items and optionally blobs in a single SQLite database.
//
// Items keep a materialized virtual path next to their parent pointer, so subtree queries
// are prefix matches on an indexed column instead of recursive joins. Blobs live in a
// separate table keyed by (bucket, key) and are only used when the backend also serves
// as object storage.
type SQLiteBackend struct {
	mu sync.RWMutex
	db *sql.DB

	buckets *backend.BucketProvisioner
}

// NewSQLiteBackend creates a new SQLite-backed backend.
// The dbPath can be ":memory:" for an in-memory database or a file path.
func NewSQLiteBackend(dbPath string, bucketTemplate string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Every connection to ":memory:" opens its own database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	sb := &SQLiteBackend{
		db: db,
	}
	sb.buckets = backend.NewBucketProvisioner(bucketTemplate, sb.ensureBucket)

	if err := sb.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return sb, nil
}

// initSchema creates the database schema.
func (sb *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS treefs_filesystems (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tenant_id INTEGER,
		tenant_key TEXT NOT NULL,
		create_time INTEGER NOT NULL,
		modify_time INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_treefs_filesystems_tenant ON treefs_filesystems(tenant_key);

	CREATE TABLE IF NOT EXISTS treefs_items (
		id TEXT PRIMARY KEY,
		filesystem_id TEXT NOT NULL,
		parent_id TEXT REFERENCES treefs_items(id),
		name TEXT NOT NULL,
		virtual_path TEXT NOT NULL,
		tenant_id INTEGER,
		tenant_key TEXT NOT NULL,
		type INTEGER NOT NULL,
		size_in_bytes INTEGER,
		content_type TEXT,
		external_url TEXT,
		storage_key TEXT,
		meta_properties TEXT,
		create_time INTEGER NOT NULL,
		modify_time INTEGER NOT NULL,
		UNIQUE (tenant_key, virtual_path)
	);
	CREATE INDEX IF NOT EXISTS idx_treefs_items_filesystem ON treefs_items(filesystem_id);
	CREATE INDEX IF NOT EXISTS idx_treefs_items_parent ON treefs_items(parent_id);
	CREATE INDEX IF NOT EXISTS idx_treefs_items_path ON treefs_items(virtual_path);

	CREATE TABLE IF NOT EXISTS treefs_buckets (
		name TEXT PRIMARY KEY,
		create_time INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS treefs_objects (
		bucket TEXT NOT NULL REFERENCES treefs_buckets(name),
		key TEXT NOT NULL,
		content_type TEXT,
		content BLOB NOT NULL,
		size INTEGER NOT NULL CHECK(size >= 0),
		modify_time INTEGER NOT NULL,
		PRIMARY KEY (bucket, key)
	);
	`

	_, err := sb.db.Exec(schema)
	return err
}

// Returns the identifier name defined for this backend
func (*SQLiteBackend) GetName() string {
	return "sqlite"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
func (sb *SQLiteBackend) Open(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	// Verify database connection
	return sb.db.PingContext(ctx)
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (sb *SQLiteBackend) Close(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buckets.Forget()
	return sb.db.Close()
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (sb *SQLiteBackend) GetCapabilities() *backend.VirtualBackendCapabilities {
	return &backend.VirtualBackendCapabilities{
		Capabilities: []backend.VirtualBackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilityMetadata,
			backend.CapabilityTenantBuckets,
			backend.CapabilityPersistent,
			backend.CapabilityPrefixIndex,
		},
	}
}
