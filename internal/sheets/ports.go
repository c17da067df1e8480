package sheets

import (
	"context"

	"fatura/internal/aggregation"
)

// Ports for outbound adapters.
type (
	// MatrixExporter publishes the monthly summary of a year somewhere a
	// human reads it.
	MatrixExporter interface {
		ExportMatrix(ctx context.Context, year int, m *aggregation.Matrix) error
	}

	// TableReader returns a previously exported summary as display strings.
	TableReader interface {
		ReadTable(ctx context.Context, year int) ([][]string, error)
	}
)
