package inserter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tristendillon/routefix/core/config"
	"github.com/tristendillon/routefix/core/fsutil"
	"github.com/tristendillon/routefix/core/logger"
	"github.com/tristendillon/routefix/core/models"
	"github.com/tristendillon/routefix/core/walker"
)

// LockPath returns the run lock file for root. It lives in the temp dir,
// keyed by the absolute root, so the route tree itself is never written to.
func LockPath(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), "routefix-"+hex.EncodeToString(sum[:8])+".lock"), nil
}

// dynamicExportPattern matches any `export const dynamic = ...;` statement,
// whatever its value.
var dynamicExportPattern = regexp.MustCompile(`export\s+const\s+dynamic\s*=\s*[^;]+;`)

type Inserter struct {
	Walker *walker.Walker
	Marker string
	// DryRun computes results and diffs without writing anything.
	DryRun bool
	// Normalize hoists existing dynamic exports to the top instead of
	// treating any occurrence of the marker as done.
	Normalize bool
	// OnResult is called as soon as each file is handled.
	OnResult func(models.FixResult)
}

// NewInserter builds an inserter for cfg.Fix. The scan exclusion set is only
// applied when cfg.Fix.ApplyExclude is set.
func NewInserter(cfg *config.Config) *Inserter {
	exclude := walker.ExclusionSet{}
	if cfg.Fix.ApplyExclude {
		exclude = walker.NewExclusionSet(cfg.Scan.Exclude...)
	}

	return &Inserter{
		Walker: walker.NewWalker(exclude, walker.HasSuffix(cfg.Fix.Suffixes...)),
		Marker: cfg.Fix.Marker,
	}
}

// EnsureMarker puts the marker line at the top of every route file under root.
// The first read or write failure stops the run; results for files handled
// before it are returned with the error.
func (in *Inserter) EnsureMarker(root string) ([]models.FixResult, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Route directory %s does not exist", root)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}

	if !in.DryRun {
		lockPath, err := LockPath(root)
		if err != nil {
			return nil, err
		}
		lock := fsutil.NewRunLock(lockPath)
		if err := lock.TryLock(); err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("%v", err)
			}
		}()
	}

	var results []models.FixResult

	w := *in.Walker
	var walkErr error
	w.OnError = func(path string, err error) {
		if walkErr == nil {
			walkErr = fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	err := w.Walk(root, func(path string) error {
		if walkErr != nil {
			return walkErr
		}
		result, err := in.fixFile(path)
		if err != nil {
			return err
		}
		results = append(results, result)
		if in.OnResult != nil {
			in.OnResult(result)
		}
		return nil
	})
	if err == nil {
		err = walkErr
	}
	return results, err
}

// fixFile rewrites the file path points to. A symlinked route file keeps its
// link; the new content goes to the link target.
func (in *Inserter) fixFile(path string) (models.FixResult, error) {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return models.FixResult{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return models.FixResult{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return models.FixResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	content := string(data)

	updated, action := in.apply(content)
	result := models.FixResult{Path: path, Action: action}
	if !result.Changed() {
		return result, nil
	}

	if in.DryRun {
		result.Diff = lineDiff(path, content, updated)
		return result, nil
	}

	if err := fsutil.AtomicWrite(target, []byte(updated), info.Mode().Perm()); err != nil {
		return models.FixResult{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Debug("Rewrote %s (%d -> %d bytes)", path, len(content), len(updated))
	return result, nil
}

func (in *Inserter) apply(content string) (string, models.FixAction) {
	if in.Normalize {
		return in.normalize(content)
	}
	if strings.Contains(content, in.Marker) {
		return content, models.AlreadyPresent
	}
	return Prepend(in.Marker, content), models.Added
}

// normalize removes every dynamic export and puts the first one back on the
// first line. Files without one get the marker.
func (in *Inserter) normalize(content string) (string, models.FixAction) {
	exports := dynamicExportPattern.FindAllString(content, -1)
	if len(exports) == 0 && !strings.Contains(content, in.Marker) {
		return Prepend(in.Marker, content), models.Added
	}

	first := in.Marker
	if len(exports) > 0 {
		first = exports[0]
	}

	stripped := strings.Replace(content, in.Marker, "", 1)
	if len(exports) > 0 {
		stripped = dynamicExportPattern.ReplaceAllString(content, "")
	}

	updated := Prepend(first, strings.TrimLeft(stripped, " \t\r\n"))
	if updated == content {
		return content, models.AlreadyPresent
	}
	return updated, models.Normalized
}

// Prepend returns marker, a blank line, then content.
func Prepend(marker, content string) string {
	return marker + "\n\n" + content
}
