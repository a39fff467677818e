package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codelens-dev/codelens/internal/cerr"
)

// Manager persists codebase snapshots to a directory on disk, one JSON
// file per indexed root, named by a hash of the root's canonical path.
type Manager struct {
	dir string
}

// NewManager creates a Manager that stores snapshots under dir, creating
// it if necessary.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, cerr.Wrap("snapshot.mkdir", cerr.KindIO, "failed to create snapshot directory", err)
	}
	return &Manager{dir: dir}, nil
}

// Create walks rootPath and builds a fresh Codebase snapshot. It does not
// persist the snapshot — callers that want diff-then-save semantics should
// use GetChangedFiles, which controls load/save ordering itself.
func (m *Manager) Create(rootPath string) (*Codebase, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, cerr.Wrap("snapshot.abs", cerr.KindIO, "failed to resolve root path", err)
	}

	files, totalSize, err := walk(abs)
	if err != nil {
		return nil, cerr.Wrap("snapshot.walk", cerr.KindIO, "failed to walk codebase", err)
	}

	return &Codebase{
		RootPath:  abs,
		Files:     files,
		FileCount: len(files),
		TotalSize: totalSize,
	}, nil
}

// Load reads a previously saved snapshot for rootPath, returning (nil, nil)
// if none exists yet.
func (m *Manager) Load(rootPath string) (*Codebase, error) {
	path, err := m.pathFor(rootPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, cerr.Wrap("snapshot.read", cerr.KindIO, "failed to read snapshot", err)
	}

	var snap Codebase
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, cerr.Wrap("snapshot.decode", cerr.KindParse, "failed to parse snapshot", err)
	}
	return &snap, nil
}

// Save persists a snapshot, keyed by its RootPath.
func (m *Manager) Save(snap *Codebase) error {
	path, err := m.pathFor(snap.RootPath)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return cerr.Wrap("snapshot.encode", cerr.KindInternal, "failed to serialize snapshot", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return cerr.Wrap("snapshot.write", cerr.KindIO, "failed to write snapshot", err)
	}
	return nil
}

// Compare diffs two snapshots of the same root.
func Compare(old, next *Codebase) Changes {
	var changes Changes
	for path, newFile := range next.Files {
		oldFile, existed := old.Files[path]
		switch {
		case !existed:
			changes.Added = append(changes.Added, path)
		case oldFile.Hash != newFile.Hash:
			changes.Modified = append(changes.Modified, path)
		default:
			changes.Unchanged = append(changes.Unchanged, path)
		}
	}
	for path := range old.Files {
		if _, stillPresent := next.Files[path]; !stillPresent {
			changes.Removed = append(changes.Removed, path)
		}
	}
	return changes
}

// GetChangedFiles loads the previous snapshot (if any), creates a fresh
// one, diffs them, and saves the fresh snapshot — in that order, so the
// save never clobbers the previous snapshot before it has been read. On
// the first run for a root, every discovered file is reported as added.
func (m *Manager) GetChangedFiles(rootPath string) (*Codebase, Changes, error) {
	previous, err := m.Load(rootPath)
	if err != nil {
		return nil, Changes{}, err
	}

	current, err := m.Create(rootPath)
	if err != nil {
		return nil, Changes{}, err
	}

	var changes Changes
	if previous == nil {
		changes.Added = make([]string, 0, len(current.Files))
		for path := range current.Files {
			changes.Added = append(changes.Added, path)
		}
	} else {
		changes = Compare(previous, current)
	}

	if err := m.Save(current); err != nil {
		return nil, Changes{}, err
	}

	return current, changes, nil
}

func (m *Manager) pathFor(rootPath string) (string, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return "", cerr.Wrap("snapshot.abs", cerr.KindIO, "failed to resolve root path", err)
	}
	sum := sha256.Sum256([]byte(abs))
	name := fmt.Sprintf("%s.json", hex.EncodeToString(sum[:])[:32])
	return filepath.Join(m.dir, name), nil
}
