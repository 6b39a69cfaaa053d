package service

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"herald/internal/platform/logger"
	"herald/internal/services/feed/domain"

	perr "herald/internal/platform/errors"
)

// CursorStore persists the traversal cursor as a single decimal line.
// Writes go to a temp file in the same directory and replace the target
// with a rename, so a crash mid-write never leaves a half-written value
type CursorStore struct {
	path string
	log  logger.Logger
}

// NewCursorStore creates a store backed by the given file path
func NewCursorStore(path string) *CursorStore {
	return &CursorStore{path: path, log: *logger.Named("cursor")}
}

// Load reads the persisted cursor. A missing file or unparsable content
// yields ok=false, never an error: the caller starts from most recent
func (s *CursorStore) Load() (domain.Cursor, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("cursor file unreadable, starting fresh")
		}
		return domain.Cursor{}, false
	}
	line := strings.TrimSpace(string(raw))
	key, err := strconv.ParseUint(line, 10, 64)
	if err != nil {
		werr := perr.CorruptCursorf("cursor file %s holds %q", s.path, line)
		s.log.Warn().Err(werr).Msg("corrupt cursor file, starting fresh")
		return domain.Cursor{}, false
	}
	return domain.Cursor{Key: domain.Chronokey(key)}, true
}

// Save writes the cursor atomically. Only called when the cursor changed
func (s *CursorStore) Save(c domain.Cursor) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "cursor temp file create failed")
	}
	name := tmp.Name()
	line := strconv.FormatUint(uint64(c.Key), 10) + "\n"
	if _, err := tmp.WriteString(line); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "cursor temp file write failed")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "cursor temp file close failed")
	}
	if err := os.Rename(name, s.path); err != nil {
		_ = os.Remove(name)
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "cursor file replace failed")
	}
	return nil
}
