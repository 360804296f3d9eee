package scanner

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"unicode/utf8"

	"github.com/tristendillon/routefix/core/cache"
	"github.com/tristendillon/routefix/core/config"
	"github.com/tristendillon/routefix/core/logger"
	"github.com/tristendillon/routefix/core/models"
	"github.com/tristendillon/routefix/core/walker"
)

// RouteImportPattern recognizes an import whose module path points at an
// app/api/.../route.ts or route.js file. The match is textual: re-exports,
// dynamic import() calls and path aliases without "/app/api/" are missed.
var RouteImportPattern = regexp.MustCompile(`import\s+.*\s+from\s+['"](.*/app/api/.*/route\.(ts|js))['"]`)

var ErrInvalidUTF8 = errors.New("content is not valid UTF-8")

type Scanner struct {
	Walker  *walker.Walker
	Pattern *regexp.Regexp
	// Cache is optional; watch mode sets it to reuse results for unchanged files.
	Cache *cache.MatchCache
}

func NewScanner(cfg config.Scan) (*Scanner, error) {
	pattern := RouteImportPattern
	if cfg.Pattern != "" {
		var err error
		if pattern, err = CompilePattern(cfg.Pattern); err != nil {
			return nil, err
		}
	}

	return &Scanner{
		Walker:  walker.NewWalker(walker.NewExclusionSet(cfg.Exclude...), walker.HasExtension(cfg.Extensions...)),
		Pattern: pattern,
	}, nil
}

// Scan collects every route import under root. Files that cannot be read are
// logged and recorded in the result set; they never stop the scan.
func (s *Scanner) Scan(root string) (*models.ResultSet, error) {
	rs := models.NewResultSet()

	w := *s.Walker
	w.OnError = func(path string, err error) {
		logger.Error("Error reading %s: %v", path, err)
		rs.AddError(path, err)
	}

	err := w.Walk(root, func(path string) error {
		records, size, err := s.scanFile(path)
		if err != nil {
			logger.Error("Error reading %s: %v", path, err)
			rs.AddError(path, err)
			return nil
		}
		rs.FilesScanned++
		rs.BytesRead += size
		rs.Add(records...)
		return nil
	})
	if err != nil {
		return rs, err
	}

	if s.Cache != nil {
		s.Cache.LogStats()
	}
	return rs, nil
}

func (s *Scanner) scanFile(path string) ([]models.MatchRecord, int64, error) {
	if s.Cache != nil {
		if entry, ok := s.Cache.Get(path); ok {
			return entry.Records, entry.Size, nil
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	if !utf8.Valid(content) {
		return nil, 0, ErrInvalidUTF8
	}

	records := s.Match(path, string(content))

	if s.Cache != nil {
		if err := s.Cache.Set(path, content, records); err != nil {
			logger.Debug("Failed to cache %s: %v", path, err)
		}
	}
	return records, int64(len(content)), nil
}

// Match returns one record per non-overlapping pattern match in content.
func (s *Scanner) Match(path, content string) []models.MatchRecord {
	pattern := s.Pattern
	if pattern == nil {
		pattern = RouteImportPattern
	}

	matches := pattern.FindAllStringSubmatch(content, -1)
	records := make([]models.MatchRecord, 0, len(matches))
	for _, m := range matches {
		if len(m) < 2 {
			continue
		}
		records = append(records, models.MatchRecord{File: path, Import: m[1]})
	}
	return records
}

// CompilePattern compiles a scan.pattern override. Group 1 must capture the
// imported path.
func CompilePattern(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid import pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("import pattern %q has no capture group", expr)
	}
	return re, nil
}
