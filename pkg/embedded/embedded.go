// Package embedded provides the SQL schemas compiled into the binary.
package embedded

import (
	"embed"
	"fmt"
	"io/fs"
)

// Schemas holds one <name>_schema.sql file per database
//
//go:embed schemas
var Schemas embed.FS

// Schema returns the schema of the named database
func Schema(name string) (string, error) {
	b, err := fs.ReadFile(Schemas, "schemas/"+name+"_schema.sql")
	if err != nil {
		return "", fmt.Errorf("no schema for database %q: %w", name, err)
	}
	return string(b), nil
}
