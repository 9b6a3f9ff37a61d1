// Package output provides effect output formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-eff/internal/annotate"
	"github.com/inodb/vibe-eff/internal/variant"
)

// TabWriter writes effects in tab-delimited format, one row per effect.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

var _ annotate.EffectWriter = (*TabWriter)(nil)

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Uploaded_variation",
			"Location",
			"Ref",
			"Alt",
			"Feature_type",
			"Feature",
			"Gene",
			"Transcript",
			"Effect",
			"IMPACT",
			"Codons",
			"Amino_acids",
			"CDS_position",
			"Protein_position",
			"Distance",
			"Rank",
			"HGVSc",
			"HGVSp",
			"Issues",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes one row per effect of v. Variants without effects produce
// no rows.
func (tw *TabWriter) Write(v *variant.Variant, effs []*annotate.ChangeEffect) error {
	for _, e := range effs {
		if _, err := tw.w.WriteString(strings.Join(tw.row(v, e), "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (tw *TabWriter) row(v *variant.Variant, e *annotate.ChangeEffect) []string {
	location := fmt.Sprintf("%s:%d", v.Chrom, v.Start+1)
	if v.End > v.Start {
		location = fmt.Sprintf("%s:%d-%d", v.Chrom, v.Start+1, v.End+1)
	}

	featureType, featureID := "-", "-"
	if e.Feature != nil {
		featureType = e.Feature.Kind.String()
		featureID = orDash(e.Feature.ID)
	}

	codons := "-"
	if e.OldCodon != "" || e.NewCodon != "" {
		codons = e.OldCodon + "/" + e.NewCodon
	}
	aminoAcids := "-"
	if e.OldAA != "" || e.NewAA != "" {
		aminoAcids = e.OldAA + "/" + e.NewAA
	}

	issues := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		issues[i] = is.String()
	}

	return []string{
		orDash(v.ID),
		location,
		v.Ref,
		v.Alt,
		featureType,
		featureID,
		orDash(e.GeneName()),
		orDash(e.TranscriptID()),
		e.TypeString(),
		string(e.Impact),
		codons,
		aminoAcids,
		position(e.CDSBase),
		position(e.CodonNum),
		count(e.Distance, 0),
		count(e.Rank, 1),
		orDash(e.HGVSc),
		orDash(e.HGVSp),
		orDash(strings.Join(issues, ",")),
	}
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// position renders a 0-based offset 1-based.
func position(p int) string {
	if p < 0 {
		return "-"
	}
	return strconv.Itoa(p + 1)
}

// count renders n when it is at least min.
func count(n, min int) string {
	if n < min {
		return "-"
	}
	return strconv.Itoa(n)
}
