package gitctx

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/dshills/commitleak/internal/search"
)

// maxFileBytes is the per-file size limit for whole-file scans.
const maxFileBytes = 1 << 20 // 1MB

// walkedFile is a file to read and the name it is reported and classified
// under.
type walkedFile struct {
	path string
	name string
}

// Files reads every regular text file under paths and wraps each as an
// added-file patch. Directories are walked recursively, skipping .git, and
// their files are named relative to the walked root so the directories above
// it never affect path classification. Oversized, binary and unreadable files
// are skipped with a logged reason.
func Files(paths []string, logger zerolog.Logger) ([]search.FileDiff, error) {
	var walked []walkedFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			walked = append(walked, walkedFile{path: p, name: fileName(p)})
			continue
		}
		root := p
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			walked = append(walked, walkedFile{path: path, name: filepath.ToSlash(rel)})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}
	}
	sort.Slice(walked, func(i, j int) bool { return walked[i].name < walked[j].name })

	var files []search.FileDiff
	for _, w := range walked {
		log := logger.With().Str("path", w.path).Logger()
		info, err := os.Stat(w.path)
		if err != nil {
			log.Warn().Err(err).Str("reason", "stat failed").Msg("Skipping file")
			continue
		}
		if info.Size() > maxFileBytes {
			log.Debug().Str("reason", "oversized").Msg("Skipping file")
			continue
		}
		data, err := os.ReadFile(w.path)
		if err != nil {
			log.Warn().Err(err).Str("reason", "read failed").Msg("Skipping file")
			continue
		}
		if !IsText(data) {
			log.Debug().Str("reason", "binary").Msg("Skipping file")
			continue
		}
		files = append(files, Snippet(string(data), w.name, ""))
	}
	return files, nil
}

// fileName names an explicitly listed file. Local relative paths keep their
// directories; anything reaching outside the working directory is reduced to
// its base name.
func fileName(path string) string {
	if filepath.IsLocal(path) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	return filepath.Base(path)
}

// IsText reports whether data is detected as a text/plain descendant.
func IsText(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
