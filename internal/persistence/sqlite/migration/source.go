package migration

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

var migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Load reads every {version}_{description}.sql script in dir of fsys and
// returns them ordered by numeric version.
func Load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, NewMigrationError("", dir, "read directory", err)
	}

	migrations := make([]Migration, 0, len(entries))
	versions := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		filePath := path.Join(dir, entry.Name())
		matches := migrationFilePattern.FindStringSubmatch(entry.Name())
		if len(matches) != 3 {
			return nil, NewMigrationError("", filePath, "validate filename",
				fmt.Errorf("%w: %q does not match {version}_{description}.sql", ErrInvalidMigrationFile, entry.Name()))
		}
		version := matches[1]
		if existing, ok := versions[version]; ok {
			return nil, NewMigrationError(version, filePath, "check duplicates",
				fmt.Errorf("%w: also defined in %s", ErrDuplicateVersion, existing))
		}
		versions[version] = filePath

		content, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return nil, NewMigrationError(version, filePath, "read file", err)
		}
		sqlText := string(content)
		if len(splitStatements(sqlText)) == 0 {
			return nil, NewMigrationError(version, filePath, "validate content",
				fmt.Errorf("%w: no SQL statements", ErrInvalidMigrationFile))
		}

		migrations = append(migrations, Migration{
			Version:     version,
			Description: strings.ReplaceAll(matches[2], "_", " "),
			SQL:         sqlText,
			FilePath:    filePath,
			Checksum:    Checksum(sqlText),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		vi, _ := strconv.Atoi(migrations[i].Version)
		vj, _ := strconv.Atoi(migrations[j].Version)
		return vi < vj
	})
	return migrations, nil
}

// Checksum returns the hex encoded BLAKE2b-256 digest of a script.
func Checksum(sqlText string) string {
	sum := blake2b.Sum256([]byte(sqlText))
	return hex.EncodeToString(sum[:])
}

// splitStatements splits script content on semicolons and drops comment-only
// fragments.
func splitStatements(sqlText string) []string {
	var statements []string
	for _, stmt := range strings.Split(sqlText, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "--") {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
