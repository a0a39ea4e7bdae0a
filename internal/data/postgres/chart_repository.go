package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/ohada-ledger/internal/platform/persistence"
)

// ClassRepository implements chart.ClassRepository for PostgreSQL
type ClassRepository struct {
	querier persistence.Querier // *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewClassRepository creates a class repository bound to the pool.
func NewClassRepository(logger *slog.Logger, db persistence.Querier) *ClassRepository {
	return &ClassRepository{querier: db, logger: logger}
}

// WithTx returns a copy of the repository bound to tx.
func (r *ClassRepository) WithTx(tx pgx.Tx) *ClassRepository {
	return &ClassRepository{querier: tx, logger: r.logger}
}

// Ensure inserts the class unless its number already exists.
func (r *ClassRepository) Ensure(ctx context.Context, class *chart.AccountClass) (bool, error) {
	query := `
		INSERT INTO account_classes (number, name, description, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (number) DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query, int16(class.Number), class.Name, class.Description, class.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to ensure account class", "number", int(class.Number), "error", err)
		return false, fmt.Errorf("failed to ensure account class: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// GetByNumber retrieves a class by its number
func (r *ClassRepository) GetByNumber(ctx context.Context, number chart.ClassNumber) (*chart.AccountClass, error) {
	query := `
		SELECT number, name, description, created_at
		FROM account_classes
		WHERE number = $1
	`

	class, err := scanClass(r.querier.QueryRow(ctx, query, int16(number)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chart.ClassNotFound(number)
		}
		r.logger.Error("Failed to get account class", "number", int(number), "error", err)
		return nil, fmt.Errorf("failed to get account class: %w", err)
	}
	return class, nil
}

// List returns every class ordered by number
func (r *ClassRepository) List(ctx context.Context) ([]*chart.AccountClass, error) {
	query := `
		SELECT number, name, description, created_at
		FROM account_classes
		ORDER BY number ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list account classes", "error", err)
		return nil, fmt.Errorf("failed to list account classes: %w", err)
	}
	defer rows.Close()

	var classes []*chart.AccountClass
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account class: %w", err)
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over account classes: %w", err)
	}
	return classes, nil
}

func scanClass(row pgx.Row) (*chart.AccountClass, error) {
	var (
		class  chart.AccountClass
		number int16
	)
	if err := row.Scan(&number, &class.Name, &class.Description, &class.CreatedAt); err != nil {
		return nil, err
	}
	class.Number = chart.ClassNumber(number)
	return &class, nil
}

// AccountRepository implements chart.AccountRepository for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAccountRepository creates an account repository bound to the pool.
func NewAccountRepository(logger *slog.Logger, db persistence.Querier) *AccountRepository {
	return &AccountRepository{querier: db, logger: logger}
}

// WithTx returns a copy of the repository bound to tx.
func (r *AccountRepository) WithTx(tx pgx.Tx) *AccountRepository {
	return &AccountRepository{querier: tx, logger: r.logger}
}

const accountColumns = `id, code, name, description, class_number, is_active, created_at, updated_at`

// Create stores a new account. The unique index on code and the foreign key
// on class_number are the source of truth for uniqueness and class existence.
func (r *AccountRepository) Create(ctx context.Context, acc *chart.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		acc.ID,
		acc.Code,
		acc.Name,
		acc.Description,
		int16(acc.ClassNumber),
		acc.IsActive,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		return r.translateWriteError(err, acc, "failed to create account")
	}
	return nil
}

// Ensure inserts the account unless its code already exists.
func (r *AccountRepository) Ensure(ctx context.Context, acc *chart.Account) (bool, error) {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code) DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query,
		acc.ID,
		acc.Code,
		acc.Name,
		acc.Description,
		int16(acc.ClassNumber),
		acc.IsActive,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		return false, r.translateWriteError(err, acc, "failed to ensure account")
	}
	return result.RowsAffected() == 1, nil
}

func (r *AccountRepository) translateWriteError(err error, acc *chart.Account, msg string) error {
	switch {
	case isUniqueViolation(err):
		return chart.DuplicateCodeError{Code: acc.Code}
	case isForeignKeyViolation(err):
		return chart.UnknownClassError{Number: acc.ClassNumber}
	}
	r.logger.Error(msg, "code", acc.Code, "error", err)
	return fmt.Errorf("%s: %w", msg, err)
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*chart.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chart.AccountNotFound(id.String())
		}
		r.logger.Error("Failed to get account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

// GetByCode retrieves an account by its code
func (r *AccountRepository) GetByCode(ctx context.Context, code string) (*chart.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chart.AccountNotFound(code)
		}
		r.logger.Error("Failed to get account by code", "code", code, "error", err)
		return nil, fmt.Errorf("failed to get account by code: %w", err)
	}
	return acc, nil
}

// GetByCodes resolves a batch of codes in one round trip.
func (r *AccountRepository) GetByCodes(ctx context.Context, codes []string) (map[string]*chart.Account, error) {
	found := make(map[string]*chart.Account, len(codes))
	if len(codes) == 0 {
		return found, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = ANY($1)`

	rows, err := r.querier.Query(ctx, query, codes)
	if err != nil {
		r.logger.Error("Failed to get accounts by codes", "count", len(codes), "error", err)
		return nil, fmt.Errorf("failed to get accounts by codes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		found[acc.Code] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}
	return found, nil
}

// likeEscaper quotes the LIKE wildcards of a literal prefix.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns accounts matching filter, ordered by code
func (r *AccountRepository) List(ctx context.Context, filter chart.AccountFilter) ([]*chart.Account, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.ClassNumber != nil {
		args = append(args, int16(*filter.ClassNumber))
		conditions = append(conditions, "class_number = $"+strconv.Itoa(len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conditions = append(conditions, "is_active = $"+strconv.Itoa(len(args)))
	}
	if filter.CodePrefix != "" {
		args = append(args, likeEscaper.Replace(filter.CodePrefix)+"%")
		conditions = append(conditions, "code LIKE $"+strconv.Itoa(len(args))+` ESCAPE '\'`)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY code ASC`

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list accounts", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*chart.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}
	return accounts, nil
}

// Update writes the mutable fields of an account
func (r *AccountRepository) Update(ctx context.Context, acc *chart.Account) error {
	query := `
		UPDATE accounts
		SET code = $1, name = $2, description = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.querier.Exec(ctx, query,
		acc.Code,
		acc.Name,
		acc.Description,
		acc.IsActive,
		acc.UpdatedAt,
		acc.ID,
	)
	if err != nil {
		return r.translateWriteError(err, acc, "failed to update account")
	}
	if result.RowsAffected() == 0 {
		return chart.AccountNotFound(acc.ID.String())
	}
	return nil
}

// LockForUpdate locks the account row until the transaction ends, so no
// journal line can reference it between the usage check and the delete.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*chart.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chart.AccountNotFound(id.String())
		}
		r.logger.Error("Failed to lock account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return acc, nil
}

// Delete removes an account. A remaining journal line trips the RESTRICT
// foreign key and is reported as AccountInUseError.
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.querier.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return chart.AccountInUseError{AccountID: id}
		}
		r.logger.Error("Failed to delete account", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return chart.AccountNotFound(id.String())
	}
	return nil
}

// SumLines aggregates the journal lines of an account over the account_id index.
func (r *AccountRepository) SumLines(ctx context.Context, id uuid.UUID) (chart.LineTotals, error) {
	query := `
		SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0), COUNT(*)
		FROM journal_lines
		WHERE account_id = $1
	`

	var totals chart.LineTotals
	err := r.querier.QueryRow(ctx, query, id).Scan(&totals.TotalDebit, &totals.TotalCredit, &totals.LineCount)
	if err != nil {
		r.logger.Error("Failed to sum account lines", "id", id.String(), "error", err)
		return chart.LineTotals{}, fmt.Errorf("failed to sum account lines: %w", err)
	}
	return totals, nil
}

// HasLines reports whether any journal line references the account.
func (r *AccountRepository) HasLines(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.querier.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_lines WHERE account_id = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check account lines", "id", id.String(), "error", err)
		return false, fmt.Errorf("failed to check account lines: %w", err)
	}
	return exists, nil
}

func chartClass(n int16) chart.ClassNumber { return chart.ClassNumber(n) }

func scanAccount(row pgx.Row) (*chart.Account, error) {
	var (
		acc   chart.Account
		class int16
	)
	err := row.Scan(
		&acc.ID,
		&acc.Code,
		&acc.Name,
		&acc.Description,
		&class,
		&acc.IsActive,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	acc.ClassNumber = chart.ClassNumber(class)
	return &acc, nil
}
