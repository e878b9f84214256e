// Package store is the normalised storage layer: pooled Postgres
// access, idempotent job inserts, filtered full-text search, and the
// sideband CRUD tables (favourites, applications, not-interested,
// notes, saved searches, AI prompts, AI analyses).
package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/DrJonoG/job-search/internal/model"
	"github.com/DrJonoG/job-search/internal/region"
)

// ErrDatabaseUnavailable is returned when the database cannot be
// reached at all (as opposed to a query-specific error), so the HTTP
// boundary can render a 503 consistently.
var ErrDatabaseUnavailable = errors.New("database unavailable")

// ErrNotFound is returned by single-row lookups that find nothing.
var ErrNotFound = errors.New("not found")

// Store wraps a pooled *sql.DB. Connections are vended per call and
// recycled on close; the pool itself is sized by the caller (see
// internal/config, DATABASE_MAX_OPEN_CONN / DATABASE_MAX_IDLE_CONN,
// defaulting to 5 to match the spec's fixed pool size).
type Store struct {
	DB *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// classify maps a raw driver error to ErrDatabaseUnavailable when it
// looks like a connectivity failure, otherwise wraps it unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connect: ") ||
		strings.Contains(msg, "too many connections") ||
		strings.Contains(msg, "EOF") {
		return fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}
	return fmt.Errorf("store: %w", err)
}

// Ping verifies connectivity, returning ErrDatabaseUnavailable on
// failure.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}
	return nil
}

// ── JOBS ──────────────────────────────────────────────────────────

const insertJobSQL = `
INSERT INTO jobs
	(job_id, title, company, location, description, url, source,
	 remote, salary_min, salary_max, salary_currency, job_type,
	 experience_level, date_posted, date_scraped, tags, company_logo)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (job_id) DO NOTHING
`

// SaveJobs inserts the batch, ignoring duplicates on job_id, and
// returns the count of rows actually written. Safe to call
// concurrently from multiple adapters: the underlying insert-ignore
// guarantees at-most-one row per job_id.
func (s *Store) SaveJobs(ctx context.Context, jobs []model.Job) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	saved := 0
	for _, j := range jobs {
		res, err := s.DB.ExecContext(ctx, insertJobSQL,
			j.JobID, j.Title, j.Company, j.Location, j.Description, j.URL, j.Source,
			j.Remote, j.SalaryMin, j.SalaryMax, j.SalaryCurrency, j.JobType,
			j.ExperienceLevel, j.DatePosted, j.DateScraped, j.Tags, j.CompanyLogo,
		)
		if err != nil {
			return saved, classify(err)
		}
		n, _ := res.RowsAffected()
		saved += int(n)
	}
	return saved, nil
}

// SearchFilter holds the optional filters accepted by Search.
type SearchFilter struct {
	Query                string
	Source               string
	Remote               string
	JobType              string
	SalaryMin            *float64
	PostedInLastDays     int
	SortBy               string
	Ascending            bool
	ExcludeNotInterested bool
	Region               string
}

var allowedSort = map[string]bool{
	"date_scraped": true, "title": true, "company": true, "source": true,
	"salary_min": true, "salary_max": true, "date_posted": true,
}

// Search filters and sorts stored jobs. Term splitting for Query turns
// each whitespace-separated term into a Postgres prefix-match ts_query
// term, mirroring the MySQL `+term*` boolean-mode semantics the spec
// describes: every term must match as a prefix somewhere across
// title/company/description/tags/location.
func (s *Store) Search(ctx context.Context, f SearchFilter) ([]map[string]any, error) {
	var conditions []string
	var args []any
	argPos := 1

	if f.PostedInLastDays > 0 {
		conditions = append(conditions, fmt.Sprintf(
			"(CASE WHEN date_posted ~ '^[0-9]{4}-[0-9]{2}-[0-9]{2}' THEN date_posted::date ELSE date_scraped::date END) >= (CURRENT_DATE - $%d::int)",
			argPos))
		args = append(args, f.PostedInLastDays)
		argPos++
	}

	if strings.TrimSpace(f.Query) != "" {
		tsq := toPrefixTSQuery(f.Query)
		if tsq != "" {
			conditions = append(conditions, fmt.Sprintf("search_vector @@ to_tsquery('simple', $%d)", argPos))
			args = append(args, tsq)
			argPos++
		}
	}

	if f.Source != "" {
		conditions = append(conditions, fmt.Sprintf("source = $%d", argPos))
		args = append(args, f.Source)
		argPos++
	}

	if f.Remote != "" && f.Remote != "Any" {
		conditions = append(conditions, fmt.Sprintf("remote = $%d", argPos))
		args = append(args, f.Remote)
		argPos++
	}

	if f.JobType != "" {
		conditions = append(conditions, fmt.Sprintf("job_type ILIKE $%d", argPos))
		args = append(args, "%"+f.JobType+"%")
		argPos++
	}

	if f.SalaryMin != nil {
		conditions = append(conditions, fmt.Sprintf("(salary_min IS NOT NULL AND salary_min >= $%d)", argPos))
		args = append(args, *f.SalaryMin)
		argPos++
	}

	if f.ExcludeNotInterested {
		conditions = append(conditions, "job_id NOT IN (SELECT ni.job_id FROM not_interested ni)")
	}

	if f.Region != "" {
		patterns := region.PatternsFor(f.Region)
		if len(patterns) > 0 {
			var clauses []string
			for _, p := range patterns {
				clauses = append(clauses, fmt.Sprintf("LOWER(location) LIKE $%d", argPos))
				args = append(args, p)
				argPos++
			}
			conditions = append(conditions, "("+strings.Join(clauses, " OR ")+")")
		}
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := f.SortBy
	if !allowedSort[sortBy] {
		sortBy = "date_posted"
	}
	direction := "DESC"
	if f.Ascending {
		direction = "ASC"
	}

	var orderExpr string
	if sortBy == "date_posted" {
		orderExpr = fmt.Sprintf(
			"CASE WHEN date_posted ~ '^[0-9]{4}-[0-9]{2}-[0-9]{2}' THEN date_posted ELSE '0000-00-00' END %s, date_scraped %s",
			direction, direction)
	} else {
		orderExpr = fmt.Sprintf("%s %s", sortBy, direction)
	}

	query := fmt.Sprintf("SELECT * FROM jobs%s ORDER BY %s", where, orderExpr)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	return scanRowsNormalised(rows)
}

// toPrefixTSQuery converts whitespace-separated terms into a Postgres
// ts_query string of the form "term1:* & term2:*", the prefix-match
// analogue of MySQL's "+term1* +term2*" boolean mode.
func toPrefixTSQuery(q string) string {
	terms := strings.Fields(q)
	if len(terms) == 0 {
		return ""
	}
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		t = sanitiseTSQueryTerm(t)
		if t != "" {
			parts = append(parts, t+":*")
		}
	}
	return strings.Join(parts, " & ")
}

func sanitiseTSQueryTerm(t string) string {
	var b strings.Builder
	for _, r := range t {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GetJob retrieves a single job including its favourite/applied/not-
// interested status and application metadata.
func (s *Store) GetJob(ctx context.Context, jobID string) (map[string]any, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT j.*,
			(f.job_id IS NOT NULL) AS is_favourite,
			(a.job_id IS NOT NULL) AS is_applied,
			(ni.job_id IS NOT NULL) AS is_not_interested,
			a.applied_at, a.notes AS application_notes
		FROM jobs j
		LEFT JOIN favourites f ON f.job_id = j.job_id
		LEFT JOIN applications a ON a.job_id = j.job_id
		LEFT JOIN not_interested ni ON ni.job_id = j.job_id
		WHERE j.job_id = $1`, jobID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	results, err := scanRowsNormalised(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results[0], nil
}

// JobStatus is the bulk per-job decoration returned by GetJobStatuses.
type JobStatus struct {
	IsFavourite     bool
	IsApplied       bool
	IsNotInterested bool
}

// GetJobStatuses returns favourite/applied/not-interested flags for a
// batch of job IDs in one round trip per sideband table.
func (s *Store) GetJobStatuses(ctx context.Context, jobIDs []string) (map[string]JobStatus, error) {
	out := make(map[string]JobStatus, len(jobIDs))
	if len(jobIDs) == 0 {
		return out, nil
	}
	for _, id := range jobIDs {
		out[id] = JobStatus{}
	}

	fav, err := s.idSet(ctx, "SELECT job_id FROM favourites WHERE job_id = ANY($1)", jobIDs)
	if err != nil {
		return nil, err
	}
	app, err := s.idSet(ctx, "SELECT job_id FROM applications WHERE job_id = ANY($1)", jobIDs)
	if err != nil {
		return nil, err
	}
	ni, err := s.idSet(ctx, "SELECT job_id FROM not_interested WHERE job_id = ANY($1)", jobIDs)
	if err != nil {
		return nil, err
	}

	for id := range out {
		out[id] = JobStatus{
			IsFavourite:     fav[id],
			IsApplied:       app[id],
			IsNotInterested: ni[id],
		}
	}
	return out, nil
}

func (s *Store) idSet(ctx context.Context, query string, ids []string) (map[string]bool, error) {
	rows, err := s.DB.QueryContext(ctx, query, pqStringArray(ids))
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, classify(err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

// GetSources returns distinct source names from stored jobs.
func (s *Store) GetSources(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT DISTINCT source FROM jobs ORDER BY source")
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, classify(err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// Stats summarises job counts for the dashboard.
type Stats struct {
	Total          int
	Sources        map[string]int
	RemoteCount    int
	JobTypes       map[string]int
	FavouriteCount int
	AppliedCount   int
	NotesCount     int
	AIPromptsCount int
}

func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	st := Stats{Sources: map[string]int{}, JobTypes: map[string]int{}}

	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs").Scan(&st.Total); err != nil {
		return st, classify(err)
	}
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&st.NotesCount); err != nil {
		return st, classify(err)
	}
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM ai_prompts").Scan(&st.AIPromptsCount); err != nil {
		return st, classify(err)
	}
	if st.Total == 0 {
		return st, nil
	}

	rows, err := s.DB.QueryContext(ctx, "SELECT source, COUNT(*) FROM jobs GROUP BY source")
	if err != nil {
		return st, classify(err)
	}
	for rows.Next() {
		var src string
		var cnt int
		if err := rows.Scan(&src, &cnt); err != nil {
			rows.Close()
			return st, classify(err)
		}
		st.Sources[src] = cnt
	}
	rows.Close()

	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs WHERE LOWER(remote) = 'remote'").Scan(&st.RemoteCount); err != nil {
		return st, classify(err)
	}

	rows, err = s.DB.QueryContext(ctx, "SELECT job_type, COUNT(*) FROM jobs WHERE job_type != '' GROUP BY job_type")
	if err != nil {
		return st, classify(err)
	}
	for rows.Next() {
		var jt string
		var cnt int
		if err := rows.Scan(&jt, &cnt); err != nil {
			rows.Close()
			return st, classify(err)
		}
		st.JobTypes[jt] = cnt
	}
	rows.Close()

	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM favourites").Scan(&st.FavouriteCount); err != nil {
		return st, classify(err)
	}
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM applications").Scan(&st.AppliedCount); err != nil {
		return st, classify(err)
	}

	return st, nil
}

// ExportCSV writes every job ordered by date_scraped desc in the
// stable CSV column order. Column order is a contract; it is never
// derived from query result order.
func (s *Store) ExportCSV(ctx context.Context, w *csv.Writer) error {
	if err := w.Write(model.CSVColumns); err != nil {
		return err
	}

	rows, err := s.DB.QueryContext(ctx, "SELECT * FROM jobs ORDER BY date_scraped DESC")
	if err != nil {
		return classify(err)
	}
	defer rows.Close()

	records, err := scanRowsNormalised(rows)
	if err != nil {
		return err
	}

	for _, rec := range records {
		row := make([]string, len(model.CSVColumns))
		for i, c := range model.CSVColumns {
			row[i] = stringifyAny(rec[c])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ── row normalisation ───────────────────────────────────────────

// scanRowsNormalised converts every row to JSON-safe values: null ->
// "", timestamps -> "YYYY-MM-DD HH:MM:SS", numerics preserved,
// everything else stringified. Every selected column is kept, including
// the BIGSERIAL "id" of the sideband tables (jobs itself has no "id").
func scanRowsNormalised(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, classify(err)
		}
		out = append(out, normaliseRow(cols, vals))
	}
	return out, rows.Err()
}

func normaliseRow(cols []string, vals []any) map[string]any {
	m := make(map[string]any, len(cols))
	for i, c := range cols {
		v := vals[i]
		switch tv := v.(type) {
		case nil:
			m[c] = ""
		case time.Time:
			m[c] = tv.UTC().Format("2006-01-02 15:04:05")
		case []byte:
			m[c] = string(tv)
		case int64, int32, int, float64, float32, bool:
			m[c] = tv
		default:
			m[c] = fmt.Sprintf("%v", tv)
		}
	}
	return m
}

func stringifyAny(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(tv, 10)
	case bool:
		if tv {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", tv)
	}
}

// pqStringArray renders a Go string slice as a Postgres text[] array
// literal suitable for use with = ANY($1).
func pqStringArray(ss []string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, s := range ss {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}

// marshalJSON is a small helper for the opaque JSON-blob columns
// (saved_searches.params, saved_board_searches.params, ai_analyses.result).
func marshalJSON(v map[string]any) ([]byte, error) {
	if v == nil {
		v = map[string]any{}
	}
	return json.Marshal(v)
}

func unmarshalJSON(b []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── FAVOURITES ──────────────────────────────────────────────────

// AddFavourite inserts jobID as a favourite, returning true if the row
// was newly created and false if it was already a favourite.
func (s *Store) AddFavourite(ctx context.Context, jobID string) (bool, error) {
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO favourites (job_id) VALUES ($1) ON CONFLICT (job_id) DO NOTHING", jobID)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) RemoveFavourite(ctx context.Context, jobID string) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM favourites WHERE job_id = $1", jobID)
	return classify(err)
}

func (s *Store) IsFavourite(ctx context.Context, jobID string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM favourites WHERE job_id = $1", jobID)
}

// GetFavourites returns full job rows for every favourited job, most
// recently favourited first.
func (s *Store) GetFavourites(ctx context.Context) ([]map[string]any, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT j.* FROM jobs j
		JOIN favourites f ON f.job_id = j.job_id
		ORDER BY f.created_at DESC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	return scanRowsNormalised(rows)
}

func (s *Store) GetFavouriteJobIDs(ctx context.Context) ([]string, error) {
	return s.idList(ctx, "SELECT job_id FROM favourites ORDER BY created_at DESC")
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.DB.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify(err)
	}
	return true, nil
}

func (s *Store) idList(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, classify(err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ── APPLICATIONS ────────────────────────────────────────────────

// AddApplication marks jobID as applied, updating notes if it was
// already marked. Returns true if the row was newly created and false
// if an existing application's notes were updated instead, using
// Postgres's `xmax = 0` idiom to distinguish INSERT from the
// ON CONFLICT DO UPDATE path.
func (s *Store) AddApplication(ctx context.Context, jobID, notes string) (bool, error) {
	var inserted bool
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO applications (job_id, notes) VALUES ($1, $2)
		ON CONFLICT (job_id) DO UPDATE SET notes = EXCLUDED.notes
		RETURNING (xmax = 0)`, jobID, notes).Scan(&inserted)
	if err != nil {
		return false, classify(err)
	}
	return inserted, nil
}

func (s *Store) RemoveApplication(ctx context.Context, jobID string) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM applications WHERE job_id = $1", jobID)
	return classify(err)
}

func (s *Store) UpdateApplicationNotes(ctx context.Context, jobID, notes string) error {
	res, err := s.DB.ExecContext(ctx, "UPDATE applications SET notes = $2 WHERE job_id = $1", jobID, notes)
	if err != nil {
		return classify(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) IsApplied(ctx context.Context, jobID string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM applications WHERE job_id = $1", jobID)
}

func (s *Store) GetApplications(ctx context.Context) ([]map[string]any, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT j.*, a.applied_at, a.notes AS application_notes FROM jobs j
		JOIN applications a ON a.job_id = j.job_id
		ORDER BY a.applied_at DESC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	return scanRowsNormalised(rows)
}

func (s *Store) GetAppliedJobIDs(ctx context.Context) ([]string, error) {
	return s.idList(ctx, "SELECT job_id FROM applications ORDER BY applied_at DESC")
}

// ── NOT INTERESTED ──────────────────────────────────────────────

// AddNotInterested marks jobID as not interesting, returning true if
// the row was newly created and false if it already was.
func (s *Store) AddNotInterested(ctx context.Context, jobID string) (bool, error) {
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO not_interested (job_id) VALUES ($1) ON CONFLICT (job_id) DO NOTHING", jobID)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) RemoveNotInterested(ctx context.Context, jobID string) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM not_interested WHERE job_id = $1", jobID)
	return classify(err)
}

func (s *Store) GetNotInterestedJobIDs(ctx context.Context) ([]string, error) {
	return s.idList(ctx, "SELECT job_id FROM not_interested ORDER BY created_at DESC")
}

// ── NOTES ───────────────────────────────────────────────────────

func (s *Store) CreateNote(ctx context.Context, title, body string) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx,
		"INSERT INTO notes (title, body) VALUES ($1, $2) RETURNING id", title, body).Scan(&id)
	return id, classify(err)
}

func (s *Store) UpdateNote(ctx context.Context, id int64, title, body string) error {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE notes SET title = $2, body = $3, updated_at = now() WHERE id = $1", id, title, body)
	if err != nil {
		return classify(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM notes WHERE id = $1", id)
	if err != nil {
		return classify(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetNote(ctx context.Context, id int64) (map[string]any, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT * FROM notes WHERE id = $1", id)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	results, err := scanRowsNormalised(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results[0], nil
}

func (s *Store) GetNotes(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT * FROM notes ORDER BY updated_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	return scanRowsNormalised(rows)
}

func (s *Store) CountNotes(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&n)
	return n, classify(err)
}

// ── SAVED SEARCHES & SAVED BOARD SEARCHES ──────────────────────

func (s *Store) CreateSavedSearch(ctx context.Context, name string, params map[string]any) (int64, error) {
	return s.createSaved(ctx, "saved_searches", name, params)
}

func (s *Store) GetSavedSearches(ctx context.Context) ([]map[string]any, error) {
	return s.listSaved(ctx, "saved_searches")
}

func (s *Store) GetSavedSearch(ctx context.Context, id int64) (map[string]any, error) {
	return s.getSaved(ctx, "saved_searches", id)
}

func (s *Store) UpdateSavedSearch(ctx context.Context, id int64, name string, params map[string]any) error {
	return s.updateSaved(ctx, "saved_searches", id, name, params)
}

func (s *Store) DeleteSavedSearch(ctx context.Context, id int64) error {
	return s.deleteSaved(ctx, "saved_searches", id)
}

func (s *Store) CreateSavedBoardSearch(ctx context.Context, name string, params map[string]any) (int64, error) {
	return s.createSaved(ctx, "saved_board_searches", name, params)
}

func (s *Store) GetSavedBoardSearches(ctx context.Context) ([]map[string]any, error) {
	return s.listSaved(ctx, "saved_board_searches")
}

func (s *Store) GetSavedBoardSearch(ctx context.Context, id int64) (map[string]any, error) {
	return s.getSaved(ctx, "saved_board_searches", id)
}

func (s *Store) UpdateSavedBoardSearch(ctx context.Context, id int64, name string, params map[string]any) error {
	return s.updateSaved(ctx, "saved_board_searches", id, name, params)
}

func (s *Store) DeleteSavedBoardSearch(ctx context.Context, id int64) error {
	return s.deleteSaved(ctx, "saved_board_searches", id)
}

// createSaved/listSaved/getSaved/updateSaved/deleteSaved are shared by
// saved_searches and saved_board_searches: the two tables are
// identical in shape, differing only in what "params" means to the
// caller (a jobs search query vs. a job-board crawl configuration).
func (s *Store) createSaved(ctx context.Context, table, name string, params map[string]any) (int64, error) {
	blob, err := marshalJSON(params)
	if err != nil {
		return 0, fmt.Errorf("store: marshal params: %w", err)
	}
	var id int64
	query := fmt.Sprintf("INSERT INTO %s (name, params) VALUES ($1, $2) RETURNING id", table)
	err = s.DB.QueryRowContext(ctx, query, name, blob).Scan(&id)
	return id, classify(err)
}

func (s *Store) listSaved(ctx context.Context, table string) ([]map[string]any, error) {
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY updated_at DESC", table))
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	results, err := scanRowsNormalised(rows)
	if err != nil {
		return nil, err
	}
	return decodeParamsColumn(results), nil
}

func (s *Store) getSaved(ctx context.Context, table string, id int64) (map[string]any, error) {
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s WHERE id = $1", table), id)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	results, err := scanRowsNormalised(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	decoded := decodeParamsColumn(results)
	return decoded[0], nil
}

func (s *Store) updateSaved(ctx context.Context, table string, id int64, name string, params map[string]any) error {
	blob, err := marshalJSON(params)
	if err != nil {
		return fmt.Errorf("store: marshal params: %w", err)
	}
	query := fmt.Sprintf("UPDATE %s SET name = $2, params = $3, updated_at = now() WHERE id = $1", table)
	res, err := s.DB.ExecContext(ctx, query, id, name, blob)
	if err != nil {
		return classify(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) deleteSaved(ctx context.Context, table string, id int64) error {
	res, err := s.DB.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return classify(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// decodeParamsColumn re-parses the "params" JSON text column (stored
// as a string by normaliseRow) back into a nested map so API responses
// carry structured params rather than a raw JSON string.
func decodeParamsColumn(rows []map[string]any) []map[string]any {
	for _, r := range rows {
		if raw, ok := r["params"].(string); ok {
			if decoded, err := unmarshalJSON([]byte(raw)); err == nil {
				r["params"] = decoded
			}
		}
	}
	return rows
}

// ── AI PROMPTS ──────────────────────────────────────────────────

func (s *Store) CreateAIPrompt(ctx context.Context, title, model, cv, aboutMe, preferences, extraContext string) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO ai_prompts (title, model, cv, about_me, preferences, extra_context)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		title, model, cv, aboutMe, preferences, extraContext).Scan(&id)
	return id, classify(err)
}

func (s *Store) GetAIPrompts(ctx context.Context) ([]map[string]any, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT * FROM ai_prompts ORDER BY updated_at DESC")
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	return scanRowsNormalised(rows)
}

func (s *Store) GetAIPrompt(ctx context.Context, id int64) (map[string]any, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT * FROM ai_prompts WHERE id = $1", id)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	results, err := scanRowsNormalised(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results[0], nil
}

func (s *Store) GetActiveAIPrompt(ctx context.Context) (map[string]any, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT * FROM ai_prompts WHERE is_active LIMIT 1")
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	results, err := scanRowsNormalised(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results[0], nil
}

func (s *Store) UpdateAIPrompt(ctx context.Context, id int64, title, model, cv, aboutMe, preferences, extraContext string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE ai_prompts SET title = $2, model = $3, cv = $4, about_me = $5,
			preferences = $6, extra_context = $7, updated_at = now()
		WHERE id = $1`, id, title, model, cv, aboutMe, preferences, extraContext)
	if err != nil {
		return classify(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActiveAIPrompt enforces the single-active-prompt invariant: clear
// every row's is_active flag, then set the target row, inside one
// transaction so the partial unique index on (is_active) WHERE is_active
// is never violated mid-update and a crash between the two statements
// cannot leave more than one prompt active.
func (s *Store) SetActiveAIPrompt(ctx context.Context, id int64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE ai_prompts SET is_active = false WHERE is_active"); err != nil {
		return classify(err)
	}
	res, err := tx.ExecContext(ctx, "UPDATE ai_prompts SET is_active = true WHERE id = $1", id)
	if err != nil {
		return classify(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return classify(tx.Commit())
}

func (s *Store) DeleteAIPrompt(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM ai_prompts WHERE id = $1", id)
	if err != nil {
		return classify(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CountAIPrompts(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM ai_prompts").Scan(&n)
	return n, classify(err)
}

// ── AI ANALYSES ─────────────────────────────────────────────────

// SaveAIAnalysis upserts the analysis result for a (job, prompt) pair:
// re-running an analysis with the same prompt against the same job
// replaces the prior result rather than accumulating duplicates.
func (s *Store) SaveAIAnalysis(ctx context.Context, jobID string, promptID int64, modelName string, result map[string]any) error {
	blob, err := marshalJSON(result)
	if err != nil {
		return fmt.Errorf("store: marshal result: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO ai_analyses (job_id, prompt_id, model, result)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (job_id, prompt_id) DO UPDATE
			SET model = EXCLUDED.model, result = EXCLUDED.result, created_at = now()`,
		jobID, promptID, modelName, blob)
	return classify(err)
}

func (s *Store) GetAIAnalysis(ctx context.Context, jobID string, promptID int64) (map[string]any, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT * FROM ai_analyses WHERE job_id = $1 AND prompt_id = $2", jobID, promptID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	results, err := scanRowsNormalised(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return decodeResultColumn(results)[0], nil
}

func (s *Store) GetAIAnalysesForJob(ctx context.Context, jobID string) ([]map[string]any, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT * FROM ai_analyses WHERE job_id = $1 ORDER BY created_at DESC", jobID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	results, err := scanRowsNormalised(rows)
	if err != nil {
		return nil, err
	}
	return decodeResultColumn(results), nil
}

// AIAnalysesFilter narrows GetAIAnalysesList, mirroring the filters the
// job-search review board exposes: a minimum match score, an allow-list
// of recommendation buckets, and an optional restriction to one prompt.
type AIAnalysesFilter struct {
	MinScore        float64
	Recommendations []string
	PromptID        int64
	Query           string
	Limit           int
	Offset          int
}

func (s *Store) GetAIAnalysesList(ctx context.Context, f AIAnalysesFilter) ([]map[string]any, error) {
	conditions := []string{"1=1"}
	var args []any
	argPos := 1

	if f.MinScore > 0 {
		conditions = append(conditions, fmt.Sprintf("(a.result->>'match_score')::numeric >= $%d", argPos))
		args = append(args, f.MinScore)
		argPos++
	}
	if len(f.Recommendations) > 0 {
		conditions = append(conditions, fmt.Sprintf("a.result->>'recommendation' = ANY($%d)", argPos))
		args = append(args, pqStringArray(f.Recommendations))
		argPos++
	}
	if f.PromptID > 0 {
		conditions = append(conditions, fmt.Sprintf("a.prompt_id = $%d", argPos))
		args = append(args, f.PromptID)
		argPos++
	}
	if strings.TrimSpace(f.Query) != "" {
		conditions = append(conditions, fmt.Sprintf("(j.title ILIKE $%d OR j.company ILIKE $%d OR a.result::text ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+f.Query+"%")
		argPos++
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT j.*, a.id AS analysis_id, a.prompt_id, a.model AS analysis_model,
			a.result, a.created_at AS analysed_at
		FROM ai_analyses a
		JOIN jobs j ON j.job_id = a.job_id
		WHERE %s
		ORDER BY a.created_at DESC
		LIMIT $%d OFFSET $%d`, strings.Join(conditions, " AND "), argPos, argPos+1)
	args = append(args, limit, f.Offset)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	results, err := scanRowsNormalised(rows)
	if err != nil {
		return nil, err
	}
	return decodeResultColumn(results), nil
}

func decodeResultColumn(rows []map[string]any) []map[string]any {
	for _, r := range rows {
		if raw, ok := r["result"].(string); ok {
			if decoded, err := unmarshalJSON([]byte(raw)); err == nil {
				r["result"] = decoded
			}
		}
	}
	return rows
}
