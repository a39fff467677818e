// Package snapshot tracks a codebase's file contents across indexing runs
// so the indexing pipeline can diff "what changed" instead of re-chunking
// every file on every run.
package snapshot

// File is the tracked state of a single file at snapshot time.
type File struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	ModTime   int64  `json:"modified"`
	Hash      string `json:"hash"`
	Extension string `json:"extension"`
}

// Codebase is a full point-in-time snapshot of a directory tree.
type Codebase struct {
	RootPath  string          `json:"root_path"`
	CreatedAt int64           `json:"created_at"`
	Files     map[string]File `json:"files"`
	FileCount int             `json:"file_count"`
	TotalSize int64           `json:"total_size"`
}

// Changes is the result of diffing two Codebase snapshots.
type Changes struct {
	Added     []string
	Modified  []string
	Removed   []string
	Unchanged []string
}

// ChangedFiles returns added and modified paths together — the set that
// needs re-chunking.
func (c Changes) ChangedFiles() []string {
	out := make([]string, 0, len(c.Added)+len(c.Modified))
	out = append(out, c.Added...)
	out = append(out, c.Modified...)
	return out
}
