// Package all wires every built-in storage backend into the storage factory.
//
// Importing it for side effects makes the "postgres", "mysql", "mssql" and
// "sqlite" kinds available to storage.New and storage.DialectFor:
//
//	import _ "domainetl/internal/storage/all"
package all

import (
	_ "domainetl/internal/storage/mssql"
	_ "domainetl/internal/storage/mysql"
	_ "domainetl/internal/storage/postgres"
	_ "domainetl/internal/storage/sqlite"
)
