package snapshot

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// walk performs a single-threaded, git-aware walk of rootPath: it honors
// .gitignore (including nested ones), .git/info/exclude, and the user's
// global gitignore, never follows symlinks, and always skips dotfiles and
// directories, matching the reference walker this is grounded on. Entries
// it cannot read are logged and skipped rather than failing the whole walk.
func walk(rootPath string) (map[string]File, int64, error) {
	billyFS := osfs.New(rootPath)
	var patterns []gitignore.Pattern

	if repoPatterns, err := gitignore.ReadPatterns(billyFS, nil); err != nil {
		log.Printf("snapshot: reading gitignore patterns under %s: %v", rootPath, err)
	} else {
		patterns = append(patterns, repoPatterns...)
	}

	if excludePatterns, err := readExcludeFile(billyFS); err != nil {
		log.Printf("snapshot: reading .git/info/exclude under %s: %v", rootPath, err)
	} else {
		patterns = append(patterns, excludePatterns...)
	}

	if globalPatterns, err := gitignore.LoadGlobalPatterns(osfs.New("")); err != nil {
		log.Printf("snapshot: reading global gitignore: %v", err)
	} else {
		patterns = append(patterns, globalPatterns...)
	}

	matcher := gitignore.NewMatcher(patterns)

	files := make(map[string]File)
	var totalSize int64

	walkErr := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("snapshot: walking %s: %v", path, err)
			return nil
		}
		if path == rootPath {
			return nil
		}

		rel, relErr := filepath.Rel(rootPath, path)
		if relErr != nil {
			return nil
		}
		segments := strings.Split(filepath.ToSlash(rel), "/")
		base := filepath.Base(path)

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if strings.HasPrefix(base, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.Match(segments, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			log.Printf("snapshot: stat %s: %v", path, err)
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			log.Printf("snapshot: reading %s: %v", path, err)
			return nil
		}

		relSlash := filepath.ToSlash(rel)
		snap := File{
			Path:      relSlash,
			Size:      info.Size(),
			ModTime:   info.ModTime().Unix(),
			Hash:      hashContent(content),
			Extension: filepath.Ext(base),
		}
		files[relSlash] = snap
		totalSize += snap.Size
		return nil
	})
	if walkErr != nil {
		return nil, 0, walkErr
	}

	return files, totalSize, nil
}

// readExcludeFile reads .git/info/exclude, the repository-local exclude
// list that sits outside any tracked .gitignore file. A missing file (no
// .git directory, or a worktree without one yet) is not an error.
func readExcludeFile(fs billy.Filesystem) ([]gitignore.Pattern, error) {
	f, err := fs.Open(filepath.Join(".git", "info", "exclude"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns, scanner.Err()
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
