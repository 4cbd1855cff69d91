// assets/embed.go
//
// SQL migrations compiled into the binary, applied in lexical order by migrate()
// in db.go.
package assets

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed sql/*.sql
var Migrations embed.FS

// MigrationFiles lists the embedded migration paths in the order they must run.
func MigrationFiles() ([]string, error) {
	files, err := fs.Glob(Migrations, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
