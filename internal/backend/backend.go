// Package backend picks where the sync worker exports summaries to.
package backend

import (
	"context"
	"fmt"

	"fatura/internal/config"
	"fatura/internal/log"
	ports "fatura/internal/sheets"
	gsheet "fatura/internal/sheets/google"
	"fatura/internal/sheets/memory"
)

// Type names an export backend.
type Type string

const (
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

func (t Type) String() string { return string(t) }

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// TypeFor returns SheetsBackend when export is enabled or a spreadsheet is
// configured, MemoryBackend otherwise.
func TypeFor(cfg *config.Config) Type {
	if cfg.SheetsExportEnabled || cfg.GoogleSpreadsheetID != "" {
		return SheetsBackend
	}
	return MemoryBackend
}

// Exporter is both halves of an export backend.
type Exporter interface {
	ports.MatrixExporter
	ports.TableReader
}

// New builds the exporter of type t.
func New(ctx context.Context, t Type, cfg *config.Config, logger *log.Logger) (Exporter, error) {
	switch t {
	case SheetsBackend:
		client, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.SummarySheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("google sheets backend: %w", err)
		}
		logger.Info("Initialized Google Sheets backend",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.SummarySheetName)
		return client, nil
	case MemoryBackend:
		logger.Info("Initialized memory backend - summaries are not persisted")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("invalid backend type: %s", t)
	}
}
