package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ohada-ledger/internal/domain/journal"
	"github.com/ohada-ledger/internal/platform/persistence"
)

// JournalRepository implements journal.Repository for PostgreSQL
type JournalRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewJournalRepository creates a journal repository bound to the pool.
func NewJournalRepository(logger *slog.Logger, db persistence.Querier) *JournalRepository {
	return &JournalRepository{querier: db, logger: logger}
}

// WithTx returns a copy of the repository bound to tx.
func (r *JournalRepository) WithTx(tx pgx.Tx) *JournalRepository {
	return &JournalRepository{querier: tx, logger: r.logger}
}

const entryColumns = `id, reference, entry_date, description, is_balanced, is_posted, created_at, updated_at, posted_at`

const lineSelect = `
	SELECT l.id, l.entry_id, l.account_id, a.code, a.name, l.position, l.debit, l.credit, l.description
	FROM journal_lines l
	JOIN accounts a ON a.id = l.account_id
`

// Create inserts the header with a compare-and-insert on the reference, then
// the lines. It must run inside a transaction for the lines to be atomic.
func (r *JournalRepository) Create(ctx context.Context, entry *journal.Entry) error {
	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (reference) DO NOTHING
		RETURNING id
	`

	var id uuid.UUID
	err := r.querier.QueryRow(ctx, query,
		entry.ID,
		entry.Reference,
		entry.Date,
		entry.Description,
		entry.IsBalanced,
		entry.IsPosted,
		entry.CreatedAt,
		entry.UpdatedAt,
		entry.PostedAt,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return journal.DuplicateReferenceError{Reference: entry.Reference}
		}
		r.logger.Error("Failed to create journal entry", "reference", entry.Reference, "error", err)
		return fmt.Errorf("failed to create journal entry: %w", err)
	}

	return r.insertLines(ctx, entry)
}

func (r *JournalRepository) insertLines(ctx context.Context, entry *journal.Entry) error {
	query := `
		INSERT INTO journal_lines (id, entry_id, account_id, position, debit, credit, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i, line := range entry.Lines {
		_, err := r.querier.Exec(ctx, query,
			line.ID,
			entry.ID,
			line.AccountID,
			line.Position,
			line.Debit,
			line.Credit,
			line.Description,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return journal.UnknownAccountError{Line: i, AccountCode: line.AccountCode}
			}
			r.logger.Error("Failed to insert journal line",
				"reference", entry.Reference,
				"position", line.Position,
				"error", err,
			)
			return fmt.Errorf("failed to insert journal line: %w", err)
		}
	}
	return nil
}

// ReferenceExists reports whether another entry uses reference.
func (r *JournalRepository) ReferenceExists(ctx context.Context, reference string, excluding *uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM journal_entries WHERE reference = $1)`
	args := []interface{}{reference}
	if excluding != nil {
		query = `SELECT EXISTS (SELECT 1 FROM journal_entries WHERE reference = $1 AND id <> $2)`
		args = append(args, *excluding)
	}

	var exists bool
	if err := r.querier.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		r.logger.Error("Failed to check journal reference", "reference", reference, "error", err)
		return false, fmt.Errorf("failed to check journal reference: %w", err)
	}
	return exists, nil
}

// GetByID retrieves an entry with its lines
func (r *JournalRepository) GetByID(ctx context.Context, id uuid.UUID) (*journal.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE id = $1`
	return r.getOne(ctx, query, id.String(), id)
}

// GetByReference retrieves an entry with its lines
func (r *JournalRepository) GetByReference(ctx context.Context, reference string) (*journal.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE reference = $1`
	return r.getOne(ctx, query, reference, reference)
}

// LockForUpdate loads the entry under a row lock.
func (r *JournalRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*journal.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id.String(), id)
}

func (r *JournalRepository) getOne(ctx context.Context, query, key string, arg interface{}) (*journal.Entry, error) {
	entry, err := scanEntry(r.querier.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, journal.EntryNotFound(key)
		}
		r.logger.Error("Failed to get journal entry", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}

	lines, err := r.linesFor(ctx, []uuid.UUID{entry.ID})
	if err != nil {
		return nil, err
	}
	entry.Lines = lines[entry.ID]
	return entry, nil
}

// List returns entries newest date first. Lines are fetched in a single
// follow-up query rather than per entry.
func (r *JournalRepository) List(ctx context.Context, filter journal.ListFilter) ([]*journal.Entry, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, "entry_date >= $"+strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, "entry_date <= $"+strconv.Itoa(len(args)))
	}
	if filter.IsPosted != nil {
		args = append(args, *filter.IsPosted)
		conditions = append(conditions, "is_posted = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY entry_date DESC, created_at DESC, reference ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list journal entries", "error", err)
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var (
		entries []*journal.Entry
		ids     []uuid.UUID
	)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, entry)
		ids = append(ids, entry.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over journal entries: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return entries, nil
	}
	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		e.Lines = lines[e.ID]
	}
	return entries, nil
}

func (r *JournalRepository) linesFor(ctx context.Context, entryIDs []uuid.UUID) (map[uuid.UUID][]journal.Line, error) {
	query := lineSelect + `WHERE l.entry_id = ANY($1) ORDER BY l.entry_id, l.position`

	rows, err := r.querier.Query(ctx, query, entryIDs)
	if err != nil {
		r.logger.Error("Failed to load journal lines", "entries", len(entryIDs), "error", err)
		return nil, fmt.Errorf("failed to load journal lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[uuid.UUID][]journal.Line, len(entryIDs))
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		lines[l.EntryID] = append(lines[l.EntryID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over journal lines: %w", err)
	}
	return lines, nil
}

// Replace overwrites the header and lines of an unposted entry.
func (r *JournalRepository) Replace(ctx context.Context, entry *journal.Entry) error {
	query := `
		UPDATE journal_entries
		SET reference = $1, entry_date = $2, description = $3, is_balanced = $4, updated_at = $5
		WHERE id = $6 AND is_posted = FALSE
	`

	result, err := r.querier.Exec(ctx, query,
		entry.Reference,
		entry.Date,
		entry.Description,
		entry.IsBalanced,
		entry.UpdatedAt,
		entry.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return journal.DuplicateReferenceError{Reference: entry.Reference}
		}
		r.logger.Error("Failed to update journal entry", "id", entry.ID.String(), "error", err)
		return fmt.Errorf("failed to update journal entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return journal.EntryPostedError{EntryID: entry.ID, Reference: entry.Reference}
	}

	if _, err := r.querier.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1`, entry.ID); err != nil {
		r.logger.Error("Failed to clear journal lines", "id", entry.ID.String(), "error", err)
		return fmt.Errorf("failed to clear journal lines: %w", err)
	}
	return r.insertLines(ctx, entry)
}

// MarkPosted flips is_posted for a balanced, unposted entry.
func (r *JournalRepository) MarkPosted(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE journal_entries
		SET is_posted = TRUE, posted_at = $1, updated_at = $1
		WHERE id = $2 AND is_posted = FALSE AND is_balanced = TRUE
	`

	result, err := r.querier.Exec(ctx, query, at, id)
	if err != nil {
		r.logger.Error("Failed to post journal entry", "id", id.String(), "error", err)
		return fmt.Errorf("failed to post journal entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return journal.AlreadyPostedError{EntryID: id}
	}
	return nil
}

// Delete removes an unposted entry; its lines go with it by cascade.
func (r *JournalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.querier.Exec(ctx, `DELETE FROM journal_entries WHERE id = $1 AND is_posted = FALSE`, id)
	if err != nil {
		r.logger.Error("Failed to delete journal entry", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return journal.EntryPostedError{EntryID: id}
	}
	return nil
}

// LinesForAccount returns every line on the account with its entry header,
// oldest entry first.
func (r *JournalRepository) LinesForAccount(ctx context.Context, accountID uuid.UUID) ([]journal.AccountLine, error) {
	query := `
		SELECT l.id, l.entry_id, l.account_id, a.code, a.name, l.position, l.debit, l.credit, l.description,
		       e.reference, e.entry_date, e.is_posted
		FROM journal_lines l
		JOIN accounts a ON a.id = l.account_id
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE l.account_id = $1
		ORDER BY e.entry_date ASC, e.reference ASC, l.position ASC
	`

	rows, err := r.querier.Query(ctx, query, accountID)
	if err != nil {
		r.logger.Error("Failed to get account lines", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to get account lines: %w", err)
	}
	defer rows.Close()

	var lines []journal.AccountLine
	for rows.Next() {
		var al journal.AccountLine
		err := rows.Scan(
			&al.ID,
			&al.EntryID,
			&al.AccountID,
			&al.AccountCode,
			&al.AccountName,
			&al.Position,
			&al.Debit,
			&al.Credit,
			&al.Description,
			&al.EntryReference,
			&al.EntryDate,
			&al.EntryPosted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account line: %w", err)
		}
		lines = append(lines, al)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over account lines: %w", err)
	}
	return lines, nil
}

// TotalsByAccount aggregates lines per account, ordered by code.
func (r *JournalRepository) TotalsByAccount(ctx context.Context, postedOnly bool) ([]journal.AccountTotals, error) {
	query := `
		SELECT a.id, a.code, a.name, a.class_number, SUM(l.debit), SUM(l.credit)
		FROM journal_lines l
		JOIN accounts a ON a.id = l.account_id
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE $1 = FALSE OR e.is_posted = TRUE
		GROUP BY a.id, a.code, a.name, a.class_number
		ORDER BY a.code ASC
	`

	rows, err := r.querier.Query(ctx, query, postedOnly)
	if err != nil {
		r.logger.Error("Failed to aggregate account totals", "error", err)
		return nil, fmt.Errorf("failed to aggregate account totals: %w", err)
	}
	defer rows.Close()

	var totals []journal.AccountTotals
	for rows.Next() {
		var (
			t     journal.AccountTotals
			class int16
		)
		if err := rows.Scan(&t.AccountID, &t.Code, &t.Name, &class, &t.TotalDebit, &t.TotalCredit); err != nil {
			return nil, fmt.Errorf("failed to scan account totals: %w", err)
		}
		t.ClassNumber = chartClass(class)
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over account totals: %w", err)
	}
	return totals, nil
}

func scanEntry(row pgx.Row) (*journal.Entry, error) {
	var e journal.Entry
	err := row.Scan(
		&e.ID,
		&e.Reference,
		&e.Date,
		&e.Description,
		&e.IsBalanced,
		&e.IsPosted,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.PostedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanLine(row pgx.Row) (journal.Line, error) {
	var l journal.Line
	err := row.Scan(
		&l.ID,
		&l.EntryID,
		&l.AccountID,
		&l.AccountCode,
		&l.AccountName,
		&l.Position,
		&l.Debit,
		&l.Credit,
		&l.Description,
	)
	return l, err
}
