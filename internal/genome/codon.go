package genome

import (
	"fmt"
	"strings"

	"github.com/bebop/poly/synthesis/codon"
	"github.com/bebop/poly/transform"
)

const bases = "TCAG"

// CodonTable translates codons for one NCBI genetic code.
type CodonTable struct {
	Index  int
	aa     map[string]byte
	starts map[string]bool
	stops  map[string]bool
}

// NewCodonTable builds the table for an NCBI translation table index
// (1 is the standard code, 2 vertebrate mitochondrial).
func NewCodonTable(index int) (*CodonTable, error) {
	tt := codon.GetCodonTable(index)
	if tt == nil || tt.IsEmpty() {
		return nil, fmt.Errorf("codon table %d: unknown NCBI translation table", index)
	}
	t := &CodonTable{
		Index:  index,
		aa:     make(map[string]byte, 64),
		starts: make(map[string]bool, len(tt.GetStartCodons())),
		stops:  make(map[string]bool, len(tt.GetStopCodons())),
	}
	for _, c := range tt.GetStartCodons() {
		t.starts[strings.ToUpper(c)] = true
	}
	for _, c := range tt.GetStopCodons() {
		t.stops[strings.ToUpper(c)] = true
	}
	for _, a := range []byte(bases) {
		for _, b := range []byte(bases) {
			for _, c := range []byte(bases) {
				cod := string([]byte{a, b, c})
				t.aa[cod] = t.translateOne(tt, cod)
			}
		}
	}
	return t, nil
}

// translateOne translates a single codon with the library table.
func (t *CodonTable) translateOne(tt codon.Table, cod string) byte {
	if t.stops[cod] {
		return '*'
	}
	p, err := codon.Translate(cod, tt)
	if err != nil || len(p) != 1 {
		return 'X'
	}
	return p[0]
}

// AA translates one codon. Unknown or partial codons give 'X' and stop
// codons give '*'.
func (t *CodonTable) AA(cod string) byte {
	if len(cod) != 3 {
		return 'X'
	}
	if aa, ok := t.aa[cod]; ok {
		return aa
	}
	if aa, ok := t.aa[strings.ToUpper(cod)]; ok {
		return aa
	}
	return 'X'
}

// Translate translates complete codons of seq. A trailing partial codon
// is dropped.
func (t *CodonTable) Translate(seq string) string {
	n := len(seq) / 3
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(t.AA(seq[i*3 : i*3+3]))
	}
	return b.String()
}

// IsStart returns true if cod is a start codon of this code.
func (t *CodonTable) IsStart(cod string) bool {
	return t.starts[strings.ToUpper(cod)]
}

// IsStop returns true if cod is a stop codon of this code.
func (t *CodonTable) IsStop(cod string) bool {
	return t.stops[strings.ToUpper(cod)]
}

// CodonTables selects a codon table per chromosome.
type CodonTables struct {
	def     *CodonTable
	byChrom map[string]*CodonTable
}

// NewCodonTables builds a default table plus per-chromosome overrides, all
// given as NCBI table indexes.
func NewCodonTables(defaultIndex int, chroms map[string]int) (*CodonTables, error) {
	cache := make(map[int]*CodonTable)
	get := func(i int) (*CodonTable, error) {
		if t, ok := cache[i]; ok {
			return t, nil
		}
		t, err := NewCodonTable(i)
		if err != nil {
			return nil, err
		}
		cache[i] = t
		return t, nil
	}

	def, err := get(defaultIndex)
	if err != nil {
		return nil, err
	}
	ct := &CodonTables{def: def, byChrom: make(map[string]*CodonTable, len(chroms))}
	for chrom, i := range chroms {
		t, err := get(i)
		if err != nil {
			return nil, fmt.Errorf("chromosome %s: %w", chrom, err)
		}
		ct.byChrom[chrom] = t
	}
	return ct, nil
}

// For returns the table used on chrom.
func (c *CodonTables) For(chrom string) *CodonTable {
	if t, ok := c.byChrom[chrom]; ok {
		return t
	}
	return c.def
}

// Default returns the table used on chromosomes without an override.
func (c *CodonTables) Default() *CodonTable {
	return c.def
}

// ReverseComplement returns the reverse complement of a DNA sequence.
func ReverseComplement(seq string) string {
	return transform.ReverseComplement(seq)
}

// AminoAcidSingleToThree converts single letter amino acid codes to three
// letter codes.
var AminoAcidSingleToThree = map[byte]string{
	'A': "Ala", 'C': "Cys", 'D': "Asp", 'E': "Glu",
	'F': "Phe", 'G': "Gly", 'H': "His", 'I': "Ile",
	'K': "Lys", 'L': "Leu", 'M': "Met", 'N': "Asn",
	'P': "Pro", 'Q': "Gln", 'R': "Arg", 'S': "Ser",
	'T': "Thr", 'V': "Val", 'W': "Trp", 'Y': "Tyr",
	'*': "Ter", 'X': "Xaa", 'U': "Sec", 'O': "Pyl",
}
