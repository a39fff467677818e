// Package sqlitevec implements vectorstore.Provider on top of sqlite-vec's
// vec0 virtual tables, for single-node deployments that want persistence
// without running a separate database process.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	sqlitevec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codelens-dev/codelens/internal/cerr"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

func init() {
	sqlitevec.Auto()
}

// Store is a vectorstore.Provider backed by a single SQLite database file.
// Each collection gets a companion pair of tables: a vec0 virtual table
// holding (id, embedding) for KNN search, and a plain table holding
// (id, content, metadata) for the payload vec0 can't store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite-vec store at path. Pass
// ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, cerr.Wrap("vectorstore.sqlite_open_failed", cerr.KindVectorDB, "open sqlite database", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

var collectionNamePattern = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// tableNames derives the two table identifiers for a collection.
// Collection names are caller-controlled (repository-prefixed, not raw
// user input), but are still sanitized before being spliced into SQL since
// sqlite-vec's vec0 DDL gives no way to parameterize a table name.
func tableNames(collection string) (records, vec string) {
	safe := collectionNamePattern.ReplaceAllString(collection, "_")
	return "records_" + safe, "vec_" + safe
}

func (s *Store) EnsureCollection(ctx context.Context, collection string, dimensions int) error {
	records, vec := tableNames(collection)

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, content TEXT, metadata TEXT)`, records,
	)); err != nil {
		return cerr.Wrap("vectorstore.create_records_table_failed", cerr.KindVectorDB, "create records table", err)
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(id TEXT PRIMARY KEY, embedding float[%d])`, vec, dimensions,
	)); err != nil {
		return cerr.Wrap("vectorstore.create_vec_table_failed", cerr.KindVectorDB, "create vector index table", err)
	}

	return nil
}

func (s *Store) DeleteCollection(ctx context.Context, collection string) error {
	records, vec := tableNames(collection)
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, vec)); err != nil {
		return cerr.Wrap("vectorstore.drop_vec_table_failed", cerr.KindVectorDB, "drop vector index table", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, records)); err != nil {
		return cerr.Wrap("vectorstore.drop_records_table_failed", cerr.KindVectorDB, "drop records table", err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	records, _ := tableNames(collection)
	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, records)).Scan(&count)
	if err != nil {
		if isNoSuchTable(err) {
			return 0, notFound(collection)
		}
		return 0, cerr.Wrap("vectorstore.count_failed", cerr.KindVectorDB, "count records", err)
	}
	return count, nil
}

func (s *Store) CollectionExists(ctx context.Context, collection string) (bool, error) {
	records, _ := tableNames(collection)
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, records).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, cerr.Wrap("vectorstore.collection_exists_failed", cerr.KindVectorDB, "check collection existence", err)
	}
	return true, nil
}

func (s *Store) Stats(ctx context.Context, collection string) (vectorstore.CollectionStats, error) {
	count, err := s.Count(ctx, collection)
	if err != nil {
		return vectorstore.CollectionStats{}, err
	}
	return vectorstore.CollectionStats{Count: count, Provider: s.ProviderName()}, nil
}

// Flush is a no-op: every write already commits inside its own
// transaction, so there's nothing buffered to persist.
func (s *Store) Flush(ctx context.Context, collection string) error {
	return nil
}

func (s *Store) ProviderName() string {
	return "sqlite-vec"
}

// Insert writes each record's embedding and payload inside one
// transaction, deleting any existing row for the same id first since
// vec0 virtual tables don't support INSERT OR REPLACE.
func (s *Store) Insert(ctx context.Context, collection string, records []vectorstore.Record) ([]string, error) {
	recordsTable, vecTable := tableNames(collection)

	if _, err := s.Count(ctx, collection); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, cerr.Wrap("vectorstore.begin_tx_failed", cerr.KindVectorDB, "begin transaction", err)
	}
	defer tx.Rollback()

	deleteVec, err := tx.PrepareContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, vecTable))
	if err != nil {
		return nil, cerr.Wrap("vectorstore.prepare_failed", cerr.KindVectorDB, "prepare vector delete", err)
	}
	defer deleteVec.Close()

	insertVec, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (id, embedding) VALUES (?, ?)`, vecTable))
	if err != nil {
		return nil, cerr.Wrap("vectorstore.prepare_failed", cerr.KindVectorDB, "prepare vector insert", err)
	}
	defer insertVec.Close()

	upsertRecord, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, content, metadata) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET content = excluded.content, metadata = excluded.metadata`, recordsTable,
	))
	if err != nil {
		return nil, cerr.Wrap("vectorstore.prepare_failed", cerr.KindVectorDB, "prepare record upsert", err)
	}
	defer upsertRecord.Close()

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}

		embBytes, err := sqlitevec.SerializeFloat32(rec.Embedding)
		if err != nil {
			return nil, cerr.Wrap("vectorstore.serialize_failed", cerr.KindVectorDB, "serialize embedding", err)
		}

		metaJSON, err := json.Marshal(rec.Metadata)
		if err != nil {
			return nil, cerr.Wrap("vectorstore.metadata_marshal_failed", cerr.KindVectorDB, "marshal metadata", err)
		}

		if _, err := deleteVec.ExecContext(ctx, id); err != nil {
			return nil, cerr.Wrap("vectorstore.delete_failed", cerr.KindVectorDB, "delete existing vector", err)
		}
		if _, err := insertVec.ExecContext(ctx, id, embBytes); err != nil {
			return nil, cerr.Wrap("vectorstore.insert_failed", cerr.KindVectorDB, "insert vector", err)
		}
		if _, err := upsertRecord.ExecContext(ctx, id, rec.Content, string(metaJSON)); err != nil {
			return nil, cerr.Wrap("vectorstore.insert_failed", cerr.KindVectorDB, "upsert record", err)
		}

		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, cerr.Wrap("vectorstore.commit_failed", cerr.KindVectorDB, "commit transaction", err)
	}
	return ids, nil
}

func (s *Store) Delete(ctx context.Context, collection string, ids []string) error {
	recordsTable, vecTable := tableNames(collection)

	if _, err := s.Count(ctx, collection); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cerr.Wrap("vectorstore.begin_tx_failed", cerr.KindVectorDB, "begin transaction", err)
	}
	defer tx.Rollback()

	deleteVec, err := tx.PrepareContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, vecTable))
	if err != nil {
		return cerr.Wrap("vectorstore.prepare_failed", cerr.KindVectorDB, "prepare vector delete", err)
	}
	defer deleteVec.Close()

	deleteRecord, err := tx.PrepareContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, recordsTable))
	if err != nil {
		return cerr.Wrap("vectorstore.prepare_failed", cerr.KindVectorDB, "prepare record delete", err)
	}
	defer deleteRecord.Close()

	for _, id := range ids {
		if _, err := deleteVec.ExecContext(ctx, id); err != nil {
			return cerr.Wrap("vectorstore.delete_failed", cerr.KindVectorDB, "delete vector", err)
		}
		if _, err := deleteRecord.ExecContext(ctx, id); err != nil {
			return cerr.Wrap("vectorstore.delete_failed", cerr.KindVectorDB, "delete record", err)
		}
	}

	return tx.Commit()
}

// Search runs a KNN query via vec_distance_cosine and joins against the
// records table for content and metadata. A missing collection degrades
// to an empty result set.
func (s *Store) Search(ctx context.Context, collection string, queryEmbedding []float32, limit int) ([]vectorstore.Result, error) {
	recordsTable, vecTable := tableNames(collection)

	queryBytes, err := sqlitevec.SerializeFloat32(queryEmbedding)
	if err != nil {
		return nil, cerr.Wrap("vectorstore.serialize_failed", cerr.KindVectorDB, "serialize query embedding", err)
	}

	query := fmt.Sprintf(`
		SELECT r.id, r.content, r.metadata, v.distance
		FROM (
			SELECT id, vec_distance_cosine(embedding, ?) AS distance
			FROM %s
			ORDER BY distance
			LIMIT ?
		) v
		JOIN %s r ON r.id = v.id
		ORDER BY v.distance
	`, vecTable, recordsTable)

	rows, err := s.db.QueryContext(ctx, query, queryBytes, limit)
	if err != nil {
		if isNoSuchTable(err) {
			return nil, nil
		}
		return nil, cerr.Wrap("vectorstore.search_failed", cerr.KindVectorDB, "run vector search", err)
	}
	defer rows.Close()

	var results []vectorstore.Result
	for rows.Next() {
		var id, content, metaJSON string
		var distance float64
		if err := rows.Scan(&id, &content, &metaJSON, &distance); err != nil {
			return nil, cerr.Wrap("vectorstore.scan_failed", cerr.KindVectorDB, "scan search result", err)
		}

		var metadata map[string]any
		if metaJSON != "" {
			if err := json.Unmarshal([]byte(metaJSON), &metadata); err != nil {
				return nil, cerr.Wrap("vectorstore.metadata_unmarshal_failed", cerr.KindVectorDB, "unmarshal metadata", err)
			}
		}

		results = append(results, vectorstore.Result{
			Record: vectorstore.Record{ID: id, Content: content, Metadata: metadata},
			Score:  scoreFromCosineDistance(distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, cerr.Wrap("vectorstore.search_failed", cerr.KindVectorDB, "iterate search results", err)
	}

	return results, nil
}

// scoreFromCosineDistance converts sqlite-vec's cosine distance (0 for
// identical vectors, 2 for antipodal) into the [0, 1] similarity score the
// Provider interface promises: similarity = 1 - distance, then rescaled
// the same way as the in-memory store's (cos + 1) / 2.
func scoreFromCosineDistance(distance float64) float64 {
	similarity := 1 - distance
	return (similarity + 1) / 2
}

// GetByIDs fetches records by primary key, in no particular order.
func (s *Store) GetByIDs(ctx context.Context, collection string, ids []string) ([]vectorstore.Result, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	records, _ := tableNames(collection)

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT id, content, metadata FROM %s WHERE id IN (%s)`, records, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isNoSuchTable(err) {
			return nil, notFound(collection)
		}
		return nil, cerr.Wrap("vectorstore.get_by_ids_failed", cerr.KindVectorDB, "fetch records by id", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListVectors returns up to limit records, unranked.
func (s *Store) ListVectors(ctx context.Context, collection string, limit int) ([]vectorstore.Result, error) {
	records, _ := tableNames(collection)
	query := fmt.Sprintf(`SELECT id, content, metadata FROM %s`, records)
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isNoSuchTable(err) {
			return nil, notFound(collection)
		}
		return nil, cerr.Wrap("vectorstore.list_vectors_failed", cerr.KindVectorDB, "list records", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListCollections discovers collections by scanning sqlite_master for the
// records_* tables EnsureCollection creates.
func (s *Store) ListCollections(ctx context.Context) ([]vectorstore.CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE 'records_%'`)
	if err != nil {
		return nil, cerr.Wrap("vectorstore.list_collections_failed", cerr.KindVectorDB, "list collection tables", err)
	}
	defer rows.Close()

	var infos []vectorstore.CollectionInfo
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return nil, cerr.Wrap("vectorstore.scan_failed", cerr.KindVectorDB, "scan table name", err)
		}
		name := strings.TrimPrefix(table, "records_")

		var count int
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&count); err != nil {
			return nil, cerr.Wrap("vectorstore.count_failed", cerr.KindVectorDB, "count collection", err)
		}
		infos = append(infos, vectorstore.CollectionInfo{Name: name, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, cerr.Wrap("vectorstore.list_collections_failed", cerr.KindVectorDB, "iterate collection tables", err)
	}
	return infos, nil
}

// ListFilePaths groups collection's records by metadata's file_path,
// computed in Go since sqlite's json_extract support here is best kept to
// simple equality filters rather than full aggregation queries.
func (s *Store) ListFilePaths(ctx context.Context, collection string, limit int) ([]vectorstore.FileInfo, error) {
	all, err := s.ListVectors(ctx, collection, 0)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0)
	byFile := make(map[string][]vectorstore.Result)
	for _, r := range all {
		path := vectorstore.MetaString(r.Metadata, "file_path")
		if path == "" {
			continue
		}
		if _, seen := byFile[path]; !seen {
			order = append(order, path)
		}
		byFile[path] = append(byFile[path], r)
	}
	if limit > 0 && limit < len(order) {
		order = order[:limit]
	}

	infos := make([]vectorstore.FileInfo, 0, len(order))
	for _, path := range order {
		chunks := byFile[path]
		infos = append(infos, vectorstore.FileInfo{
			FilePath:         path,
			ChunkCount:       len(chunks),
			DominantLanguage: vectorstore.DominantLanguage(chunks),
		})
	}
	return infos, nil
}

// GetChunksByFile filters on metadata's JSON-encoded file_path field via
// json_extract, then sorts by start_line in Go.
func (s *Store) GetChunksByFile(ctx context.Context, collection string, filePath string) ([]vectorstore.Result, error) {
	records, _ := tableNames(collection)
	query := fmt.Sprintf(`SELECT id, content, metadata FROM %s WHERE json_extract(metadata, '$.file_path') = ?`, records)

	rows, err := s.db.QueryContext(ctx, query, filePath)
	if err != nil {
		if isNoSuchTable(err) {
			return nil, notFound(collection)
		}
		return nil, cerr.Wrap("vectorstore.get_chunks_by_file_failed", cerr.KindVectorDB, "query chunks by file", err)
	}
	defer rows.Close()

	results, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	vectorstore.SortByStartLine(results)
	return results, nil
}

func scanRecords(rows *sql.Rows) ([]vectorstore.Result, error) {
	var results []vectorstore.Result
	for rows.Next() {
		var id, content, metaJSON string
		if err := rows.Scan(&id, &content, &metaJSON); err != nil {
			return nil, cerr.Wrap("vectorstore.scan_failed", cerr.KindVectorDB, "scan record", err)
		}

		var metadata map[string]any
		if metaJSON != "" {
			if err := json.Unmarshal([]byte(metaJSON), &metadata); err != nil {
				return nil, cerr.Wrap("vectorstore.metadata_unmarshal_failed", cerr.KindVectorDB, "unmarshal metadata", err)
			}
		}
		results = append(results, vectorstore.Result{Record: vectorstore.Record{ID: id, Content: content, Metadata: metadata}})
	}
	if err := rows.Err(); err != nil {
		return nil, cerr.Wrap("vectorstore.scan_failed", cerr.KindVectorDB, "iterate records", err)
	}
	return results, nil
}

func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

func notFound(collection string) error {
	return cerr.NotFound("vectorstore.collection_not_found", fmt.Sprintf("collection %q not found", collection))
}
