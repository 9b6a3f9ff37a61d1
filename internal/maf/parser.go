// Package maf reads variants from MAF (Mutation Annotation Format) files.
package maf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-eff/internal/genome"
	"github.com/inodb/vibe-eff/internal/variant"
)

// Standard MAF column names
const (
	ColChromosome      = "Chromosome"
	ColStartPosition   = "Start_Position"
	ColEndPosition     = "End_Position"
	ColReferenceAllele = "Reference_Allele"
	ColTumorSeqAllele2 = "Tumor_Seq_Allele2"
	ColHugoSymbol      = "Hugo_Symbol"
	ColDbSNPRS         = "dbSNP_RS"
	ColSampleBarcode   = "Tumor_Sample_Barcode"
)

// ColumnIndices holds the indices of the MAF columns the parser reads.
// Missing optional columns are -1.
type ColumnIndices struct {
	Chromosome      int
	StartPosition   int
	EndPosition     int
	ReferenceAllele int
	TumorSeqAllele2 int
	HugoSymbol      int
	DbSNPRS         int
	SampleBarcode   int
}

// Record is one MAF data row. Start is 1-based as in the file.
type Record struct {
	Chrom      string
	Start      int
	Ref        string // "-" for insertions
	Alt        string // "-" for deletions
	HugoSymbol string
	DbSNPRS    string
	Sample     string
}

// Variant converts the row into a minimal variant. MAF insertions sit
// between Start and Start+1; deletions start at Start.
func (r *Record) Variant() (*variant.Variant, error) {
	chrom := genome.NormalizeChrom(r.Chrom)
	id := r.DbSNPRS
	if id == "novel" {
		id = ""
	}
	switch {
	case r.Ref == "-" && r.Alt == "-":
		return nil, fmt.Errorf("%w: empty ref and alt", variant.ErrUnsupportedAllele)
	case r.Ref == "-":
		return variant.NewInsertion(chrom, r.Start, r.Alt, id), nil
	case r.Alt == "-":
		return variant.NewDeletion(chrom, r.Start-1, r.Ref, id), nil
	default:
		return variant.FromVCF(chrom, r.Start, r.Ref, r.Alt, id)
	}
}

// Parser reads variants from a MAF file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	columns    ColumnIndices
	headerLine string
	skipped    int
	logger     *zap.Logger
}

// NewParser opens a MAF file, plain or gzipped. A path of "-" reads stdin.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open maf file: %w", err)
	}
	p, err := NewParserFromReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	p.file = file
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader, unwrapping gzip
// input.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{logger: zap.NewNop()}

	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.gzipReader = gz
		br = bufio.NewReader(gz)
	}
	p.reader = br

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// SetLogger sets the logger for skipped rows.
func (p *Parser) SetLogger(l *zap.Logger) {
	p.logger = l
}

// parseHeader reads and parses the MAF header line to find column indices.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return &ParseError{
					Line:    p.lineNumber,
					Message: "no header line found",
				}
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		p.headerLine = line
		return p.parseColumnIndices(line)
	}
}

// parseColumnIndices parses the header line to find column indices.
func (p *Parser) parseColumnIndices(headerLine string) error {
	p.columns = ColumnIndices{
		Chromosome:      -1,
		StartPosition:   -1,
		EndPosition:     -1,
		ReferenceAllele: -1,
		TumorSeqAllele2: -1,
		HugoSymbol:      -1,
		DbSNPRS:         -1,
		SampleBarcode:   -1,
	}

	for i, col := range strings.Split(headerLine, "\t") {
		switch col {
		case ColChromosome:
			p.columns.Chromosome = i
		case ColStartPosition:
			p.columns.StartPosition = i
		case ColEndPosition:
			p.columns.EndPosition = i
		case ColReferenceAllele:
			p.columns.ReferenceAllele = i
		case ColTumorSeqAllele2:
			p.columns.TumorSeqAllele2 = i
		case ColHugoSymbol:
			p.columns.HugoSymbol = i
		case ColDbSNPRS:
			p.columns.DbSNPRS = i
		case ColSampleBarcode:
			p.columns.SampleBarcode = i
		}
	}

	for _, req := range []struct {
		name string
		idx  int
	}{
		{ColChromosome, p.columns.Chromosome},
		{ColStartPosition, p.columns.StartPosition},
		{ColReferenceAllele, p.columns.ReferenceAllele},
		{ColTumorSeqAllele2, p.columns.TumorSeqAllele2},
	} {
		if req.idx == -1 {
			return &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("required column '%s' not found in header", req.name),
			}
		}
	}
	return nil
}

// NextRecord reads the next data row. Returns nil, nil at end of input.
func (p *Parser) NextRecord() (*Record, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return p.parseLine(line)
	}
}

// Next returns the next variant. Rows that cannot be represented are
// logged and skipped. Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*variant.Variant, error) {
	for {
		rec, err := p.NextRecord()
		if err != nil || rec == nil {
			return nil, err
		}
		v, err := rec.Variant()
		if err != nil {
			p.skipped++
			p.logger.Debug("skipping MAF row",
				zap.Int("line", p.lineNumber),
				zap.Error(err))
			continue
		}
		return v, nil
	}
}

// Skipped returns the number of rows skipped so far.
func (p *Parser) Skipped() int {
	return p.skipped
}

// parseLine parses a single MAF data line into a Record.
func (p *Parser) parseLine(line string) (*Record, error) {
	fields := strings.Split(line, "\t")

	minCols := max(p.columns.Chromosome, p.columns.StartPosition, p.columns.ReferenceAllele, p.columns.TumorSeqAllele2)
	if len(fields) <= minCols {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}

	pos, err := strconv.Atoi(fields[p.columns.StartPosition])
	if err != nil || pos < 1 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[p.columns.StartPosition]),
		}
	}

	optional := func(idx int) string {
		if idx >= 0 && idx < len(fields) {
			return fields[idx]
		}
		return ""
	}

	return &Record{
		Chrom:      fields[p.columns.Chromosome],
		Start:      pos,
		Ref:        fields[p.columns.ReferenceAllele],
		Alt:        fields[p.columns.TumorSeqAllele2],
		HugoSymbol: optional(p.columns.HugoSymbol),
		DbSNPRS:    optional(p.columns.DbSNPRS),
		Sample:     optional(p.columns.SampleBarcode),
	}, nil
}

// Header returns the MAF header line.
func (p *Parser) Header() string {
	return p.headerLine
}

// Columns returns the parsed column indices.
func (p *Parser) Columns() ColumnIndices {
	return p.columns
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during MAF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("maf parse error at line %d: %s", e.Line, e.Message)
}
