// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"strings"

	"github.com/inodb/vibe-eff/internal/genome"
	"github.com/inodb/vibe-eff/internal/variant"
)

// Record is one data line of a VCF file.
type Record struct {
	Chrom         string                 // Chromosome name (e.g., "12", "chr12")
	Pos           int                    // 1-based genomic position
	ID            string                 // Variant identifier (e.g., rs ID)
	Ref           string                 // Reference allele
	Alt           string                 // Alternate alleles, comma separated
	Qual          float64                // Quality score
	Filter        string                 // Filter status (PASS or filter name)
	Info          map[string]interface{} // INFO field key-value pairs
	SampleColumns string                 // FORMAT and sample columns, tab separated
}

// Alts returns the alternate alleles.
func (r *Record) Alts() []string {
	return strings.Split(r.Alt, ",")
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (r *Record) NormalizeChrom() string {
	return genome.NormalizeChrom(r.Chrom)
}

// Variants returns one minimal variant per alternate allele. Alleles that
// cannot be represented are returned in skipped.
func (r *Record) Variants() (vs []*variant.Variant, skipped []string) {
	chrom := r.NormalizeChrom()
	for _, rec := range SplitMultiAllelic(r) {
		v, err := variant.FromVCF(chrom, rec.Pos, rec.Ref, rec.Alt, rec.ID)
		if err != nil {
			skipped = append(skipped, rec.Alt)
			continue
		}
		vs = append(vs, v)
	}
	return vs, skipped
}
