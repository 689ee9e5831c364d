package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fwojciec/docsel"
)

// Ensure FileStore implements docsel.DocumentStore at compile time.
var _ docsel.DocumentStore = (*FileStore)(nil)

// FileStore implements docsel.DocumentStore with atomic update semantics.
// Documents are saved to hidden temporary files next to their targets, then
// renamed over the targets on Commit. FileStore is safe for concurrent use.
type FileStore struct {
	mu     sync.Mutex
	staged map[string]string // target path → temporary path
}

// NewFileStore creates a new FileStore.
func NewFileStore() *FileStore {
	return &FileStore{staged: make(map[string]string)}
}

func (s *FileStore) Save(ctx context.Context, path string, doc io.WriterTo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if err := writeFile(tmp, doc, mode(path)); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.staged[path]; ok {
		_ = os.Remove(prev)
	}
	s.staged[path] = tmp.Name()
	return nil
}

func writeFile(f *os.File, doc io.WriterTo, perm os.FileMode) error {
	if _, err := doc.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(perm); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// mode returns the permissions of the file at path, or 0644 when it does
// not exist yet.
func mode(path string) os.FileMode {
	if fi, err := os.Stat(path); err == nil {
		return fi.Mode().Perm()
	}
	return 0644
}

// Commit moves every staged file over its target. Existing targets are
// first renamed to backups; if any step fails the targets already replaced
// are restored from their backups, staged files are discarded and the error
// is returned. Backups are removed once every target is in place.
func (s *FileStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := make([]string, 0, len(s.staged))
	for target := range s.staged {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	var done []swap
	for _, target := range targets {
		sw, err := install(target, s.staged[target])
		if err != nil {
			for i := len(done) - 1; i >= 0; i-- {
				done[i].undo()
			}
			s.discard()
			return fmt.Errorf("commit %s: %w", target, err)
		}
		done = append(done, sw)
	}
	for _, sw := range done {
		if sw.backup != "" {
			_ = os.Remove(sw.backup)
		}
		delete(s.staged, sw.target)
	}
	return nil
}

// swap records one staged file moved over its target.
type swap struct {
	target string
	backup string // empty when the target did not exist
}

// install renames tmp over target, keeping the previous target as a backup
// next to it. On failure the target is left as it was.
func install(target, tmp string) (swap, error) {
	sw := swap{target: target}
	if _, err := os.Lstat(target); err == nil {
		f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.bak")
		if err != nil {
			return sw, err
		}
		_ = f.Close()
		if err := os.Rename(target, f.Name()); err != nil {
			_ = os.Remove(f.Name())
			return sw, err
		}
		sw.backup = f.Name()
	}
	if err := os.Rename(tmp, target); err != nil {
		sw.undo()
		return sw, err
	}
	return sw, nil
}

// undo puts the backup back in place, or removes a target that did not
// exist before.
func (sw swap) undo() {
	if sw.backup == "" {
		_ = os.Remove(sw.target)
		return
	}
	_ = os.Rename(sw.backup, sw.target)
}

// discard removes every staged file. Callers hold s.mu.
func (s *FileStore) discard() {
	for target, tmp := range s.staged {
		_ = os.Remove(tmp)
		delete(s.staged, target)
	}
}

func (s *FileStore) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for target, tmp := range s.staged {
		if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
		delete(s.staged, target)
	}
	return firstErr
}
