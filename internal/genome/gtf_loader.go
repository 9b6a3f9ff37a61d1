package genome

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// GTFLoader reads gene models from GENCODE/Ensembl GTF files and feeds them
// to a Builder.
type GTFLoader struct {
	path    string
	skipped int
}

// NewGTFLoader creates a new GTF loader.
func NewGTFLoader(path string) *GTFLoader {
	return &GTFLoader{path: path}
}

// Load adds all genes, transcripts, exons and CDS records to b.
func (l *GTFLoader) Load(b *Builder) error {
	return l.loadGTF(b, "")
}

// LoadChromosome adds records for a single chromosome.
func (l *GTFLoader) LoadChromosome(b *Builder, chrom string) error {
	return l.loadGTF(b, chrom)
}

// Skipped returns the number of malformed lines ignored by the last load.
func (l *GTFLoader) Skipped() int {
	return l.skipped
}

func (l *GTFLoader) loadGTF(b *Builder, filterChrom string) error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open GTF file: %w", err)
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

	records, err := l.parseGTF(reader, filterChrom)
	if err != nil {
		return err
	}
	for _, r := range records {
		b.Add(r)
	}
	return nil
}

// gtfFeature represents a parsed GTF line.
type gtfFeature struct {
	chrom       string
	featureType string
	start       int // 0-based
	end         int
	strand      int8
	attributes  map[string]string
}

// parseGTF turns GTF lines into builder records. Genes without a gene line
// are synthesized from their transcripts.
func (l *GTFLoader) parseGTF(reader io.Reader, filterChrom string) ([]Record, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	l.skipped = 0
	filterChrom = normalizeChrom(filterChrom)

	var records []Record
	genes := make(map[string]*Record)
	var geneOrder []string
	hasExon := make(map[string]bool)

	for scanner.Scan() {
		line := scanner.Text()

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		feat, err := parseGTFLine(line)
		if err != nil {
			l.skipped++
			continue
		}
		if filterChrom != "" && feat.chrom != filterChrom {
			continue
		}

		geneID := stripVersion(feat.attributes["gene_id"])
		transcriptID := stripVersion(feat.attributes["transcript_id"])

		switch feat.featureType {
		case "gene":
			if geneID == "" {
				l.skipped++
				continue
			}
			g, ok := genes[geneID]
			if !ok {
				g = &Record{}
				geneOrder = append(geneOrder, geneID)
				genes[geneID] = g
			}
			*g = Record{
				Kind:    KindGene,
				Chrom:   feat.chrom,
				Start:   feat.start,
				End:     feat.end,
				Strand:  feat.strand,
				ID:      geneID,
				Name:    feat.attributes["gene_name"],
				Biotype: geneBiotype(feat.attributes),
				Coding:  geneBiotype(feat.attributes) == "protein_coding",
			}

		case "transcript":
			if geneID == "" || transcriptID == "" {
				l.skipped++
				continue
			}
			biotype := transcriptBiotype(feat.attributes)
			records = append(records, Record{
				Kind:    KindTranscript,
				Chrom:   feat.chrom,
				Start:   feat.start,
				End:     feat.end,
				Strand:  feat.strand,
				ID:      transcriptID,
				Parent:  geneID,
				Name:    feat.attributes["gene_name"],
				Biotype: biotype,
				Coding:  biotype == "protein_coding",
			})
			// Grow or synthesize the gene so it spans every transcript.
			g, ok := genes[geneID]
			if !ok {
				g = &Record{
					Kind:    KindGene,
					Chrom:   feat.chrom,
					Start:   feat.start,
					End:     feat.end,
					Strand:  feat.strand,
					ID:      geneID,
					Name:    feat.attributes["gene_name"],
					Biotype: geneBiotype(feat.attributes),
				}
				geneOrder = append(geneOrder, geneID)
				genes[geneID] = g
			}
			g.Start = min(g.Start, feat.start)
			g.End = max(g.End, feat.end)

		case "exon":
			if transcriptID == "" {
				l.skipped++
				continue
			}
			rank, _ := strconv.Atoi(feat.attributes["exon_number"])
			records = append(records, Record{
				Kind:   KindExon,
				Chrom:  feat.chrom,
				Start:  feat.start,
				End:    feat.end,
				Strand: feat.strand,
				ID:     stripVersion(feat.attributes["exon_id"]),
				Parent: transcriptID,
				Rank:   rank,
			})
			hasExon[transcriptID] = true

		case "CDS", "stop_codon":
			// GENCODE CDS lines exclude the stop codon; the builder merges
			// the two back together.
			if transcriptID == "" {
				l.skipped++
				continue
			}
			records = append(records, Record{
				Kind:   KindCDS,
				Chrom:  feat.chrom,
				Start:  feat.start,
				End:    feat.end,
				Strand: feat.strand,
				Parent: transcriptID,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}

	// Drop transcripts without exons along with their sub-records.
	kept := make([]Record, 0, len(records)+len(genes))
	for _, id := range geneOrder {
		kept = append(kept, *genes[id])
	}
	for _, r := range records {
		switch r.Kind {
		case KindTranscript:
			if !hasExon[r.ID] {
				continue
			}
		case KindCDS, KindExon:
			if !hasExon[r.Parent] {
				continue
			}
		}
		kept = append(kept, r)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Kind < kept[j].Kind })
	return kept, nil
}

// parseGTFLine parses a single GTF line, converting to 0-based coordinates.
func parseGTFLine(line string) (*gtfFeature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("invalid GTF line: expected 9 fields, got %d", len(fields))
	}

	start, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}

	end, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}
	if start < 1 || end < start {
		return nil, fmt.Errorf("invalid range %d-%d", start, end)
	}

	return &gtfFeature{
		chrom:       normalizeChrom(fields[0]),
		featureType: fields[2],
		start:       start - 1,
		end:         end - 1,
		strand:      parseStrand(fields[6]),
		attributes:  parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses GTF attribute column.
// Format: key "value"; key "value"; ...
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		// Find the first space to separate key from value
		idx := strings.Index(part, " ")
		if idx == -1 {
			continue
		}

		key := part[:idx]
		value := strings.Trim(strings.TrimSpace(part[idx+1:]), "\"")
		attrs[key] = value
	}

	return attrs
}

// GENCODE uses *_type, Ensembl uses *_biotype.
func geneBiotype(attrs map[string]string) string {
	if v := attrs["gene_type"]; v != "" {
		return v
	}
	return attrs["gene_biotype"]
}

func transcriptBiotype(attrs map[string]string) string {
	if v := attrs["transcript_type"]; v != "" {
		return v
	}
	return attrs["transcript_biotype"]
}

// parseStrand converts a GTF strand column to a strand value.
func parseStrand(s string) int8 {
	switch s {
	case "-":
		return Reverse
	case "+":
		return Forward
	}
	return Unknown
}

// stripVersion removes the version suffix from an Ensembl ID.
// e.g., "ENST00000456328.2" -> "ENST00000456328"
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}

// normalizeChrom normalizes chromosome names by removing the "chr" prefix,
// so GENCODE ("chr1") and VCF ("1") naming agree.
func normalizeChrom(chrom string) string {
	return strings.TrimPrefix(chrom, "chr")
}

// NormalizeChrom is the exported form used by variant readers.
func NormalizeChrom(chrom string) string {
	return normalizeChrom(chrom)
}
