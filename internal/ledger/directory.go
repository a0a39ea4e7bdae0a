package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/ohada-ledger/internal/logger"
)

// AccountSpec describes an account to create.
type AccountSpec struct {
	Code        string
	Name        string
	ClassNumber chart.ClassNumber
	Description string
	IsActive    bool
}

// Directory maintains the chart of accounts.
type Directory struct {
	store  Store
	logger *slog.Logger
}

// NewDirectory creates the account directory on top of store.
func NewDirectory(logger *slog.Logger, store Store) *Directory {
	return &Directory{store: store, logger: logger}
}

// CreateAccount files a new account under an existing class.
// Returns DuplicateCodeError or UnknownClassError.
func (d *Directory) CreateAccount(ctx context.Context, spec AccountSpec) (*chart.Account, error) {
	acc, err := chart.NewAccount(spec.Code, spec.Name, spec.ClassNumber, spec.Description, spec.IsActive)
	if err != nil {
		return nil, err
	}

	err = d.store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		if err := requireClass(ctx, uow, acc.ClassNumber); err != nil {
			return err
		}
		return uow.Accounts().Create(ctx, acc)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, d.logger).Info("Account created",
		"account_id", acc.ID.String(),
		"code", acc.Code,
		"class", acc.ClassNumber,
	)
	return acc, nil
}

// GetAccount looks an account up by id or by code.
func (d *Directory) GetAccount(ctx context.Context, codeOrID string) (*chart.Account, error) {
	return findAccount(ctx, d.store.Accounts(), codeOrID)
}

// ListAccounts returns the accounts matching filter ordered by code.
func (d *Directory) ListAccounts(ctx context.Context, filter chart.AccountFilter) ([]*chart.Account, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return d.store.Accounts().List(ctx, filter)
}

// UpdateAccount changes the mutable fields of an account. The code can only
// change while no journal line references the account.
func (d *Directory) UpdateAccount(ctx context.Context, codeOrID string, update chart.AccountUpdate) (*chart.Account, error) {
	var updated *chart.Account
	err := d.store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		current, err := findAccount(ctx, uow.Accounts(), codeOrID)
		if err != nil {
			return err
		}
		current, err = uow.Accounts().LockForUpdate(ctx, current.ID)
		if err != nil {
			return err
		}
		if update.Empty() {
			updated = current
			return nil
		}

		if update.Code != nil && *update.Code != current.Code {
			used, err := uow.Accounts().HasLines(ctx, current.ID)
			if err != nil {
				return err
			}
			if used {
				return chart.AccountInUseError{AccountID: current.ID, Code: current.Code}
			}
		}

		next, err := current.Apply(update)
		if err != nil {
			return err
		}
		if err := uow.Accounts().Update(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, d.logger).Info("Account updated", "account_id", updated.ID.String(), "code", updated.Code)
	return updated, nil
}

// DeleteAccount removes an account that no journal line references. The row
// stays locked between the check and the delete.
func (d *Directory) DeleteAccount(ctx context.Context, codeOrID string) error {
	var deleted *chart.Account
	err := d.store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		acc, err := findAccount(ctx, uow.Accounts(), codeOrID)
		if err != nil {
			return err
		}
		if acc, err = uow.Accounts().LockForUpdate(ctx, acc.ID); err != nil {
			return err
		}

		used, err := uow.Accounts().HasLines(ctx, acc.ID)
		if err != nil {
			return err
		}
		if used {
			return chart.AccountInUseError{AccountID: acc.ID, Code: acc.Code}
		}
		if err := uow.Accounts().Delete(ctx, acc.ID); err != nil {
			return err
		}
		deleted = acc
		return nil
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx, d.logger).Info("Account deleted", "account_id", deleted.ID.String(), "code", deleted.Code)
	return nil
}

// ListClasses returns the account classes ordered by number.
func (d *Directory) ListClasses(ctx context.Context) ([]*chart.AccountClass, error) {
	return d.store.Classes().List(ctx)
}

func (d *Directory) GetClass(ctx context.Context, number chart.ClassNumber) (*chart.AccountClass, error) {
	if !number.Valid() {
		return nil, chart.UnknownClassError{Number: number}
	}
	return d.store.Classes().GetByNumber(ctx, number)
}

// BalanceConvention returns the convention of a class of the taxonomy.
func (d *Directory) BalanceConvention(number chart.ClassNumber) (chart.Convention, error) {
	if !number.Valid() {
		return "", chart.UnknownClassError{Number: number}
	}
	return chart.ConventionFor(number), nil
}

// EnsureClass creates the class unless its number is already present and
// reports whether it did.
func (d *Directory) EnsureClass(ctx context.Context, number chart.ClassNumber, name, description string) (bool, error) {
	class, err := chart.NewAccountClass(number, name, description)
	if err != nil {
		return false, err
	}

	var created bool
	err = d.store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		created, err = uow.Classes().Ensure(ctx, class)
		return err
	})
	return created, err
}

// EnsureAccount creates the account unless its code is already present and
// reports whether it did.
func (d *Directory) EnsureAccount(ctx context.Context, spec AccountSpec) (bool, error) {
	acc, err := chart.NewAccount(spec.Code, spec.Name, spec.ClassNumber, spec.Description, spec.IsActive)
	if err != nil {
		return false, err
	}

	var created bool
	err = d.store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		if err := requireClass(ctx, uow, acc.ClassNumber); err != nil {
			return err
		}
		created, err = uow.Accounts().Ensure(ctx, acc)
		return err
	})
	return created, err
}

func requireClass(ctx context.Context, repos Repositories, number chart.ClassNumber) error {
	_, err := repos.Classes().GetByNumber(ctx, number)
	if errors.Is(err, shared.NotFoundError{}) {
		return chart.UnknownClassError{Number: number}
	}
	return err
}

// findAccount resolves a key that is either an account id or an account code.
// Codes are alphanumeric, so only a key containing a dash is read as an id.
func findAccount(ctx context.Context, accounts chart.AccountRepository, codeOrID string) (*chart.Account, error) {
	if strings.Contains(codeOrID, "-") {
		id, err := uuid.Parse(codeOrID)
		if err != nil {
			return nil, chart.AccountNotFound(codeOrID)
		}
		return accounts.GetByID(ctx, id)
	}
	return accounts.GetByCode(ctx, codeOrID)
}
