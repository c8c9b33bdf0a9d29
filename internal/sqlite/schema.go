package sqlite

// Schema DDL. Every statement is idempotent so an existing database is
// reopened as is.
const (
	createProfiles = `CREATE TABLE IF NOT EXISTS profiles (
    name TEXT PRIMARY KEY,
    is_default INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);`

	createServices = `CREATE TABLE IF NOT EXISTS services (
    service_uid BLOB PRIMARY KEY,
    profile TEXT NOT NULL,
    service_name TEXT NOT NULL,
    display_name TEXT NOT NULL,
    store_id BLOB,
    created_at TEXT NOT NULL,
    FOREIGN KEY (profile) REFERENCES profiles(name) ON DELETE CASCADE
);`

	createObjects = `CREATE TABLE IF NOT EXISTS objects (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_id BLOB NOT NULL UNIQUE,
    kind INTEGER NOT NULL,
    store_id BLOB NOT NULL,
    parent_id BLOB,
    created_at TEXT NOT NULL
);`

	createProps = `CREATE TABLE IF NOT EXISTS props (
    entry_id BLOB NOT NULL,
    prop_id INTEGER NOT NULL,
    prop_type INTEGER NOT NULL,
    value BLOB NOT NULL,
    PRIMARY KEY (entry_id, prop_id),
    FOREIGN KEY (entry_id) REFERENCES objects(entry_id) ON DELETE CASCADE
);`
)

// Index DDL for the lookups tables and the store tree walk use.
const (
	idxServicesProfile = `CREATE INDEX IF NOT EXISTS idx_services_profile ON services(profile);`
	idxObjectsStore    = `CREATE INDEX IF NOT EXISTS idx_objects_store ON objects(store_id);`
	idxObjectsParent   = `CREATE INDEX IF NOT EXISTS idx_objects_parent ON objects(parent_id, kind);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createProfiles,
	createServices,
	createObjects,
	createProps,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxServicesProfile,
	idxObjectsStore,
	idxObjectsParent,
}
