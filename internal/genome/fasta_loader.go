package genome

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// FASTALoader loads reference chromosome sequences from a genome FASTA file.
// It serves as the Builder's SequenceSource.
type FASTALoader struct {
	path      string
	sequences map[string][]byte // normalized chromosome -> upper-case bases
}

// NewFASTALoader creates a new FASTA loader.
func NewFASTALoader(path string) *FASTALoader {
	return &FASTALoader{
		path:      path,
		sequences: make(map[string][]byte),
	}
}

// Load reads every record of the FASTA file.
func (l *FASTALoader) Load() error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return l.parseFASTA(reader)
}

func (l *FASTALoader) parseFASTA(reader io.Reader) error {
	r := fasta.NewReader(reader, linear.NewSeq("", nil, alphabet.DNAredundant))
	for {
		s, err := r.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read FASTA: %w", err)
		}
		ls, ok := s.(*linear.Seq)
		if !ok {
			return fmt.Errorf("read FASTA: unexpected sequence type %T", s)
		}
		b := make([]byte, len(ls.Seq))
		for i, c := range ls.Seq {
			b[i] = byte(c)
		}
		l.sequences[normalizeChrom(ls.ID)] = bytes.ToUpper(b)
	}
}

// Sequence returns the forward-strand bases of chrom in [start, end].
func (l *FASTALoader) Sequence(chrom string, start, end int) (string, bool) {
	s, ok := l.sequences[normalizeChrom(chrom)]
	if !ok || start < 0 || end >= len(s) || start > end {
		return "", false
	}
	return string(s[start : end+1]), true
}

// SequenceCount returns the number of loaded sequences.
func (l *FASTALoader) SequenceCount() int {
	return len(l.sequences)
}

// AddChromosomes registers one chromosome record per loaded sequence so
// the genome knows true chromosome lengths.
func (l *FASTALoader) AddChromosomes(b *Builder) {
	names := make([]string, 0, len(l.sequences))
	for name := range l.sequences {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if len(l.sequences[name]) == 0 {
			continue
		}
		b.Add(Record{Kind: KindChromosome, Chrom: name, Start: 0, End: len(l.sequences[name]) - 1, ID: name})
	}
}
