// Package seed loads the OHADA chart of accounts into the ledger.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/ohada-ledger/internal/domain/chart"
	"github.com/ohada-ledger/internal/ledger"
	"gopkg.in/yaml.v3"
)

//go:embed chart.yaml
var embeddedChart []byte

// ClassSeed is one account class of the chart file
type ClassSeed struct {
	Number      int    `yaml:"number"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// AccountSeed is one account of the chart file. Accounts are active unless
// the file says otherwise.
type AccountSeed struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Class       int    `yaml:"class"`
	Description string `yaml:"description"`
	Inactive    bool   `yaml:"inactive"`
}

// Chart is the parsed chart file
type Chart struct {
	Classes  []ClassSeed   `yaml:"classes"`
	Accounts []AccountSeed `yaml:"accounts"`
}

// Load reads the chart at path, or the embedded OHADA chart when path is empty.
func Load(path string) (*Chart, error) {
	data := embeddedChart
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read chart file: %w", err)
		}
	}
	return Parse(data)
}

// Parse decodes a chart document.
func Parse(data []byte) (*Chart, error) {
	var c Chart
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse chart file: %w", err)
	}
	if len(c.Classes) == 0 && len(c.Accounts) == 0 {
		return nil, fmt.Errorf("chart file is empty")
	}
	return &c, nil
}

// ChartWriter creates classes and accounts unless they already exist.
// Implemented by ledger.Directory.
type ChartWriter interface {
	EnsureClass(ctx context.Context, number chart.ClassNumber, name, description string) (bool, error)
	EnsureAccount(ctx context.Context, spec ledger.AccountSpec) (bool, error)
}

// Result counts what a run created and what it found already present
type Result struct {
	ClassesCreated  int
	ClassesSkipped  int
	AccountsCreated int
	AccountsSkipped int
}

// Seeder writes a chart through a ChartWriter
type Seeder struct {
	writer ChartWriter
	logger *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(writer ChartWriter, logger *slog.Logger) *Seeder {
	return &Seeder{
		writer: writer,
		logger: logger,
	}
}

// Run creates every class, then every account. Existing rows are left as they
// are, so running twice changes nothing. The first failure stops the run.
func (s *Seeder) Run(ctx context.Context, c *Chart) (Result, error) {
	var res Result

	for _, cl := range c.Classes {
		created, err := s.writer.EnsureClass(ctx, chart.ClassNumber(cl.Number), cl.Name, cl.Description)
		if err != nil {
			return res, fmt.Errorf("class %d: %w", cl.Number, err)
		}
		if created {
			res.ClassesCreated++
			s.logger.Debug("Class created", "class_number", cl.Number)
		} else {
			res.ClassesSkipped++
		}
	}

	for _, acc := range c.Accounts {
		created, err := s.writer.EnsureAccount(ctx, ledger.AccountSpec{
			Code:        acc.Code,
			Name:        acc.Name,
			ClassNumber: chart.ClassNumber(acc.Class),
			Description: acc.Description,
			IsActive:    !acc.Inactive,
		})
		if err != nil {
			return res, fmt.Errorf("account %s: %w", acc.Code, err)
		}
		if created {
			res.AccountsCreated++
			s.logger.Debug("Account created", "code", acc.Code)
		} else {
			res.AccountsSkipped++
		}
	}

	s.logger.Info("Chart of accounts seeded",
		"classes_created", res.ClassesCreated,
		"classes_skipped", res.ClassesSkipped,
		"accounts_created", res.AccountsCreated,
		"accounts_skipped", res.AccountsSkipped,
	)
	return res, nil
}
