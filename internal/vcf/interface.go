package vcf

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-eff/internal/variant"
)

// VariantParser is the interface for parsers that read variants. Both the
// VCF and the MAF parser implement it.
type VariantParser interface {
	// Next reads the next variant.
	// Returns nil, nil when there are no more variants.
	Next() (*variant.Variant, error)

	// Close closes the parser and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int

	// Skipped returns the number of inputs that could not be represented.
	Skipped() int

	SetLogger(l *zap.Logger)
}

var _ VariantParser = (*Parser)(nil)
