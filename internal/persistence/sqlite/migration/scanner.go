package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Scanner reads migrations from a directory of an fs.FS.
type Scanner struct {
	files fs.FS
	dir   string
}

// NewScanner returns a Scanner over dir within files.
func NewScanner(files fs.FS, dir string) *Scanner {
	if dir == "" {
		dir = "."
	}
	return &Scanner{files: files, dir: dir}
}

// ScanMigrations returns every migration file sorted by numeric version.
func (s *Scanner) ScanMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(s.files, s.dir)
	if err != nil {
		return nil, NewMigrationError("", s.dir, "read directory", err)
	}

	var migrations []Migration
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		m, err := s.parse(entry.Name())
		if err != nil {
			return nil, err
		}
		if existing, dup := seen[m.Version]; dup {
			return nil, NewMigrationError(m.Version, entry.Name(), "check duplicates",
				fmt.Errorf("%w: version %s found in both %s and %s", ErrDuplicateVersion, m.Version, existing, entry.Name()))
		}
		seen[m.Version] = entry.Name()
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		vi, _ := strconv.Atoi(migrations[i].Version)
		vj, _ := strconv.Atoi(migrations[j].Version)
		return vi < vj
	})
	return migrations, nil
}

// ValidateFileName checks the {version}_{description}.sql convention.
func ValidateFileName(name string) error {
	if !fileNamePattern.MatchString(name) {
		return fmt.Errorf("%w: filename '%s' does not match pattern '{version}_{description}.sql'", ErrInvalidMigrationFile, name)
	}
	return nil
}

func (s *Scanner) parse(name string) (Migration, error) {
	filePath := path.Join(s.dir, name)
	if err := ValidateFileName(name); err != nil {
		return Migration{}, NewMigrationError("", filePath, "validate filename", err)
	}
	matches := fileNamePattern.FindStringSubmatch(name)

	content, err := fs.ReadFile(s.files, filePath)
	if err != nil {
		return Migration{}, NewMigrationError(matches[1], filePath, "read file", err)
	}
	if len(splitStatements(string(content))) == 0 {
		return Migration{}, NewMigrationError(matches[1], filePath, "parse SQL",
			fmt.Errorf("%w: no SQL statements found", ErrInvalidMigrationFile))
	}

	description := descriptionFromContent(string(content))
	if description == "" {
		description = strings.ReplaceAll(matches[2], "_", " ")
	}

	sum := sha256.Sum256(content)
	return Migration{
		Version:     matches[1],
		Description: description,
		SQL:         string(content),
		FilePath:    filePath,
		Checksum:    hex.EncodeToString(sum[:]),
	}, nil
}

// descriptionFromContent returns the text of a leading "-- Description:" comment.
func descriptionFromContent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "--") {
			if line != "" {
				return ""
			}
			continue
		}
		comment := strings.TrimSpace(strings.TrimPrefix(line, "--"))
		if rest, ok := strings.CutPrefix(comment, "Description:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// splitStatements splits SQL on semicolons and drops comment-only lines.
func splitStatements(sql string) []string {
	var statements []string
	for _, stmt := range strings.Split(sql, ";") {
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
