package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"smi-los/internal/model"
)

var (
	// ErrAlreadyExists reports that an article with the same URL is already stored.
	ErrAlreadyExists = errors.New("article already exists")
	// ErrNotFound reports that no article matched the lookup.
	ErrNotFound = errors.New("article not found")
)

// Store provides durable access to articles, publications and search history.
// Every call reads and writes the database directly; there is no cache.
type Store struct {
	db *sql.DB
}

// New creates a Store and initialises the schema.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			title           TEXT NOT NULL,
			url             TEXT UNIQUE,
			content         TEXT,
			source          TEXT,
			keywords        TEXT,
			ai_score        REAL,
			relevance_score REAL,
			found_date      TEXT NOT NULL,
			status          TEXT NOT NULL DEFAULT 'pending',
			analysis        TEXT
		);
		CREATE TABLE IF NOT EXISTS publications (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			article_id     INTEGER REFERENCES articles(id),
			platform       TEXT,
			post_id        TEXT,
			published_date TEXT NOT NULL,
			status         TEXT NOT NULL DEFAULT 'success'
		);
		CREATE TABLE IF NOT EXISTS search_history (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			keyword       TEXT,
			search_date   TEXT NOT NULL,
			results_count INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_articles_status_score ON articles(status, ai_score DESC);
		CREATE INDEX IF NOT EXISTS idx_publications_article ON publications(article_id);
	`)
	return err
}

// timeLayout is fixed-width so lexicographic ordering of stored timestamps
// matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const articleColumns = "id, title, url, content, source, keywords, ai_score, relevance_score, found_date, status, analysis"

// InsertArticle stores a new article with status pending and returns its ID.
// A second insert of the same URL returns ErrAlreadyExists; the stored
// article is left untouched.
func (s *Store) InsertArticle(ctx context.Context, a model.Article) (int64, error) {
	keywords, err := json.Marshal(a.Keywords)
	if err != nil {
		return 0, fmt.Errorf("encode keywords: %w", err)
	}
	analysis := "{}"
	if len(a.Analysis) > 0 {
		analysis = string(a.Analysis)
	}
	found := a.FoundDate
	if found.IsZero() {
		found = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (title, url, content, source, keywords, ai_score, relevance_score, found_date, status, analysis)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Title, a.URL, a.Content, a.Source, string(keywords),
		a.AIScore, a.RelevanceScore, found.UTC().Format(timeLayout),
		model.StatusPending, analysis,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrAlreadyExists
		}
		return 0, fmt.Errorf("insert article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// SetStatus overwrites the status of an article unconditionally.
// The caller is responsible for respecting the allowed status transitions;
// no legality check is performed here.
func (s *Store) SetStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE articles SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SelectGated returns pending articles with ai_score >= minScore, best first:
// ordered by score descending, then by discovery time descending.
// A limit of 0 means unbounded.
func (s *Store) SelectGated(ctx context.Context, minScore float64, limit int) ([]model.Article, error) {
	q := sq.Select(articleColumns).
		From("articles").
		Where(sq.Eq{"status": model.StatusPending}).
		Where(sq.GtOrEq{"ai_score": minScore}).
		OrderBy("ai_score DESC", "found_date DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build gated query: %w", err)
	}
	return s.queryArticles(ctx, query, args...)
}

// ListArticles returns articles optionally filtered by status, best first.
// An empty status means all statuses; a limit of 0 means unbounded.
func (s *Store) ListArticles(ctx context.Context, status string, limit int) ([]model.Article, error) {
	q := sq.Select(articleColumns).
		From("articles").
		OrderBy("ai_score DESC", "found_date DESC")
	if status != "" {
		q = q.Where(sq.Eq{"status": status})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	return s.queryArticles(ctx, query, args...)
}

// FindByURL returns the article with the given canonical URL.
func (s *Store) FindByURL(ctx context.Context, url string) (*model.Article, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+articleColumns+" FROM articles WHERE url = ?", url)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindByID returns the article with the given ID.
func (s *Store) FindByID(ctx context.Context, id int64) (*model.Article, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+articleColumns+" FROM articles WHERE id = ?", id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// RecordPublication appends a publication record for an article on a platform.
// Records are append-only; one row per publish attempt.
func (s *Store) RecordPublication(ctx context.Context, articleID int64, platform, postID, status string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO publications (article_id, platform, post_id, published_date, status)
		VALUES (?, ?, ?, ?, ?)`,
		articleID, platform, postID, time.Now().UTC().Format(timeLayout), status,
	)
	if err != nil {
		return fmt.Errorf("record publication: %w", err)
	}
	return nil
}

// Publications returns all publication records for an article, oldest first.
func (s *Store) Publications(ctx context.Context, articleID int64) ([]model.Publication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, article_id, platform, post_id, published_date, status
		FROM publications WHERE article_id = ? ORDER BY id ASC`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Publication
	for rows.Next() {
		var p model.Publication
		var published string
		var postID sql.NullString
		if err := rows.Scan(&p.ID, &p.ArticleID, &p.Platform, &postID, &published, &p.Status); err != nil {
			return nil, err
		}
		p.PostID = postID.String
		p.PublishedDate, _ = time.Parse(time.RFC3339Nano, published)
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecordSearch appends a search-history record for a keyword.
func (s *Store) RecordSearch(ctx context.Context, keyword string, resultsCount int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_history (keyword, search_date, results_count)
		VALUES (?, ?, ?)`,
		keyword, time.Now().UTC().Format(timeLayout), resultsCount,
	)
	if err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

// SearchHistory returns the most recent discovery runs, newest first.
func (s *Store) SearchHistory(ctx context.Context, limit int) ([]model.SearchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, keyword, search_date, results_count
		FROM search_history ORDER BY search_date DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query search history: %w", err)
	}
	defer rows.Close()

	var records []model.SearchRecord
	for rows.Next() {
		var r model.SearchRecord
		var searched string
		if err := rows.Scan(&r.ID, &r.Keyword, &searched, &r.ResultsCount); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, searched)
		if err != nil {
			return nil, fmt.Errorf("parse search_date: %w", err)
		}
		r.SearchDate = t
		records = append(records, r)
	}
	return records, rows.Err()
}

// Stats summarises the store for the dashboard surface.
type Stats struct {
	TotalArticles     int     `json:"total_articles"`
	PendingArticles   int     `json:"pending_articles"`
	PublishedArticles int     `json:"published_articles"`
	AvgScore          float64 `json:"avg_score"`
}

// CollectStats computes article counters and the average score.
func (s *Store) CollectStats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(CASE WHEN ai_score > 0 THEN ai_score END), 0)
		FROM articles`,
		model.StatusPending, model.StatusPublished,
	)
	if err := row.Scan(&st.TotalArticles, &st.PendingArticles, &st.PublishedArticles, &st.AvgScore); err != nil {
		return Stats{}, fmt.Errorf("collect stats: %w", err)
	}
	return st, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*model.Article, error) {
	var a model.Article
	var keywords, found, analysis sql.NullString
	if err := row.Scan(
		&a.ID, &a.Title, &a.URL, &a.Content, &a.Source,
		&keywords, &a.AIScore, &a.RelevanceScore, &found, &a.Status, &analysis,
	); err != nil {
		return nil, err
	}
	if keywords.Valid && keywords.String != "" {
		if err := json.Unmarshal([]byte(keywords.String), &a.Keywords); err != nil {
			return nil, fmt.Errorf("decode keywords: %w", err)
		}
	}
	if found.Valid {
		t, err := time.Parse(time.RFC3339Nano, found.String)
		if err != nil {
			return nil, fmt.Errorf("parse found_date: %w", err)
		}
		a.FoundDate = t
	}
	if analysis.Valid && analysis.String != "" {
		a.Analysis = json.RawMessage(analysis.String)
	}
	return &a, nil
}

func (s *Store) queryArticles(ctx context.Context, query string, args ...any) ([]model.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures as plain error strings.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
