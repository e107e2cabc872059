// Package vault stores notes as markdown files under one directory.
//
// Notes are addressed by slash-separated paths relative to the vault root,
// such as "projects/review.md". Directories whose names start with a dot
// are never treated as notes; recur keeps its own lock file in ".recur".
package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/amonks/recur/note"
)

var (
	// ErrNotFound indicates that a note does not exist.
	ErrNotFound = errors.New("note not found")
	// ErrOutsideVault indicates a path that escapes the vault root.
	ErrOutsideVault = errors.New("path is outside the vault")
)

// NoteExt is the file extension of notes.
const NoteExt = ".md"

// DataDir holds recur's files inside a vault.
const DataDir = ".recur"

// Vault is a directory of notes.
type Vault struct {
	root    string
	matcher *Matcher
	cache   *Cache
}

// Open returns the vault rooted at dir. Notes matching any exclude pattern
// are skipped when listing and watching.
func Open(dir string, exclude []string) (*Vault, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve vault %s: %w", dir, err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open vault: %s is not a directory", root)
	}

	matcher, err := NewMatcher(exclude)
	if err != nil {
		return nil, err
	}

	v := &Vault{root: root, matcher: matcher}
	v.cache = newCache(v.statNote, v.Read)
	return v, nil
}

// Root returns the absolute vault directory.
func (v *Vault) Root() string {
	return v.root
}

// Matcher returns the exclude matcher of the vault.
func (v *Vault) Matcher() *Matcher {
	return v.matcher
}

// Cache returns the metadata cache of the vault.
func (v *Vault) Cache() *Cache {
	return v.cache
}

// Abs returns the file path of a note.
func (v *Vault) Abs(name string) string {
	return filepath.Join(v.root, filepath.FromSlash(name))
}

// Rel converts a file path inside the vault to a note path.
func (v *Vault) Rel(file string) (string, error) {
	rel, err := filepath.Rel(v.root, file)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, file)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, file)
	}
	return rel, nil
}

// Resolve turns user input into a note path. Relative input is taken from
// the vault root and the ".md" extension may be omitted.
func (v *Vault) Resolve(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: empty note name", ErrNotFound)
	}
	if path.Ext(filepath.ToSlash(input)) == "" {
		input += NoteExt
	}
	if filepath.IsAbs(input) {
		if resolved, err := filepath.EvalSymlinks(filepath.Dir(input)); err == nil {
			input = filepath.Join(resolved, filepath.Base(input))
		}
		return v.Rel(input)
	}
	clean := path.Clean(filepath.ToSlash(input))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, input)
	}
	return clean, nil
}

// Stat returns ErrNotFound unless name is an existing note file.
func (v *Vault) Stat(name string) error {
	_, err := v.statNote(name)
	return err
}

// Read loads and parses a note.
func (v *Vault) Read(name string) (*note.Document, error) {
	data, err := os.ReadFile(v.Abs(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return note.Parse(name, data)
}

// Metadata returns the cached properties of a note.
func (v *Vault) Metadata(name string) (note.Snapshot, error) {
	return v.cache.Metadata(name)
}

func (v *Vault) statNote(name string) (fs.FileInfo, error) {
	info, err := os.Stat(v.Abs(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, name)
	}
	return info, nil
}

// ProcessFrontmatter applies fn to the properties of a note and writes the
// note back. Writers are serialized with a lock file in the vault, the note
// is re-read under the lock, and the file is replaced atomically. When fn
// returns an error nothing is written.
func (v *Vault) ProcessFrontmatter(ctx context.Context, name string, fn func(*note.Properties) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock, err := v.lock()
	if err != nil {
		return err
	}
	defer unlock()

	file := v.Abs(name)
	info, err := os.Stat(file)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	doc, err := note.Parse(name, data)
	if err != nil {
		return err
	}

	if err := fn(doc.Properties); err != nil {
		return err
	}

	out, err := doc.Bytes()
	if err != nil {
		return err
	}
	if bytes.Equal(out, data) {
		return nil
	}

	if err := writeFileAtomic(file, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	v.cache.Invalidate(name)
	return nil
}

func (v *Vault) lock() (func(), error) {
	dir := filepath.Join(v.root, DataDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	lockFile, err := os.OpenFile(filepath.Join(dir, "lock"), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	return func() {
		syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)
		lockFile.Close()
	}, nil
}

func writeFileAtomic(file string, data []byte, perm fs.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(file), "."+filepath.Base(file)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err1 := tmpFile.Chmod(perm); err1 != nil && err == nil {
		err = err1
	}
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return err
	}

	if err := os.Rename(name, file); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// Notes lists every note in the vault, sorted by path.
func (v *Vault) Notes() ([]string, error) {
	var notes []string
	err := filepath.WalkDir(v.root, func(file string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if file == v.root {
			return nil
		}
		rel, err := v.Rel(file)
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if IsHidden(rel) || v.matcher.ExcludesDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsNote(rel) && !v.matcher.Excludes(rel) {
			notes = append(notes, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	sort.Strings(notes)
	return notes, nil
}

// IsNote reports whether name looks like a visible note file.
func IsNote(name string) bool {
	return strings.HasSuffix(name, NoteExt) && !IsHidden(name)
}

// IsHidden reports whether any element of name starts with a dot.
func IsHidden(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
