// Package all registers every sink backend with the storage factory.
// Blank-import it from the command layer; the config selects which backend
// actually runs.
package all

import (
	_ "auditflat/internal/storage/mssql"
	_ "auditflat/internal/storage/postgres"
	_ "auditflat/internal/storage/sqlite"
)
