package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-eff/internal/annotate"
	"github.com/inodb/vibe-eff/internal/variant"
)

// flushThreshold is the number of buffered rows that triggers an append.
const flushThreshold = 10000

// EffectRow is one stored effect. Coordinates are 0-based like the
// variants they came from.
type EffectRow struct {
	RunID        string
	Seq          int64
	Chrom        string
	Start        int64
	End          int64
	Ref          string
	Alt          string
	VariantID    string
	VariantKind  string
	FeatureKind  string
	FeatureID    string
	GeneName     string
	TranscriptID string
	EffectTypes  string
	Impact       string
	OldCodon     string
	NewCodon     string
	OldAA        string
	NewAA        string
	CDSBase      int64
	CodonNum     int64
	Distance     int64
	Rank         int64
	HGVSc        string
	HGVSp        string
	Issues       string
}

// Types splits EffectTypes back into its parts.
func (r *EffectRow) Types() []string {
	if r.EffectTypes == "" {
		return nil
	}
	return strings.Split(r.EffectTypes, "+")
}

// RowFromEffect flattens an effect into a row.
func RowFromEffect(runID string, seq int64, e *annotate.ChangeEffect) EffectRow {
	v := e.Variant
	row := EffectRow{
		RunID:        runID,
		Seq:          seq,
		Chrom:        v.Chrom,
		Start:        int64(v.Start),
		End:          int64(v.End),
		Ref:          v.Ref,
		Alt:          v.Alt,
		VariantID:    v.ID,
		VariantKind:  v.Kind.String(),
		GeneName:     e.GeneName(),
		TranscriptID: e.TranscriptID(),
		EffectTypes:  e.TypeString(),
		Impact:       string(e.Impact),
		OldCodon:     e.OldCodon,
		NewCodon:     e.NewCodon,
		OldAA:        e.OldAA,
		NewAA:        e.NewAA,
		CDSBase:      int64(e.CDSBase),
		CodonNum:     int64(e.CodonNum),
		Distance:     int64(e.Distance),
		Rank:         int64(e.Rank),
		HGVSc:        e.HGVSc,
		HGVSp:        e.HGVSp,
	}
	if e.Feature != nil {
		row.FeatureKind = e.Feature.Kind.String()
		row.FeatureID = e.Feature.ID
	}
	issues := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		issues[i] = is.String()
	}
	row.Issues = strings.Join(issues, ",")
	return row
}

// Run is one annotation pass writing into a Store. It implements
// annotate.EffectWriter.
type Run struct {
	store    *Store
	id       string
	source   string
	started  time.Time
	seq      int64
	variants int64
	effects  int64
	buf      []EffectRow
}

var _ annotate.EffectWriter = (*Run)(nil)

// NewRun starts a run with a fresh ID. source names the input, for
// example the VCF path.
func (s *Store) NewRun(source string) *Run {
	return &Run{
		store:   s,
		id:      uuid.NewString(),
		source:  source,
		started: time.Now().UTC(),
	}
}

// ID returns the run ID.
func (r *Run) ID() string { return r.id }

// WriteHeader registers the run.
func (r *Run) WriteHeader() error {
	_, err := r.store.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, 0, 0)`, r.id, r.source, r.started)
	if err != nil {
		return fmt.Errorf("register run: %w", err)
	}
	return nil
}

// Write buffers the effects of one variant.
func (r *Run) Write(_ *variant.Variant, effs []*annotate.ChangeEffect) error {
	for _, e := range effs {
		r.buf = append(r.buf, RowFromEffect(r.id, r.seq, e))
	}
	r.seq++
	r.variants++
	r.effects += int64(len(effs))
	if len(r.buf) >= flushThreshold {
		return r.appendBuffered()
	}
	return nil
}

// Flush appends any buffered rows and updates the run totals.
func (r *Run) Flush() error {
	if err := r.appendBuffered(); err != nil {
		return err
	}
	_, err := r.store.db.Exec(`UPDATE runs SET variants = ?, effects = ? WHERE run_id = ?`,
		r.variants, r.effects, r.id)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

func (r *Run) appendBuffered() error {
	if len(r.buf) == 0 {
		return nil
	}
	if err := r.store.WriteEffectRows(r.buf); err != nil {
		return err
	}
	r.buf = r.buf[:0]
	return nil
}

// WriteEffectRows batch-inserts rows using the Appender API.
func (s *Store) WriteEffectRows(rows []EffectRow) error {
	if len(rows) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "effect_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range rows {
		if err := appender.AppendRow(
			r.RunID, r.Seq, r.Chrom, r.Start, r.End, r.Ref, r.Alt,
			r.VariantID, r.VariantKind, r.FeatureKind, r.FeatureID,
			r.GeneName, r.TranscriptID, r.EffectTypes, r.Impact,
			r.OldCodon, r.NewCodon, r.OldAA, r.NewAA,
			r.CDSBase, r.CodonNum, r.Distance, r.Rank,
			r.HGVSc, r.HGVSp, r.Issues,
		); err != nil {
			return fmt.Errorf("append effect row: %w", err)
		}
	}

	return appender.Flush()
}

// ClearEffects removes all stored runs and effects.
func (s *Store) ClearEffects() error {
	if _, err := s.db.Exec("DELETE FROM effect_results"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM runs")
	return err
}

const effectColumns = `run_id, seq, chrom, start_pos, end_pos, ref, alt,
	variant_id, variant_kind, feature_kind, feature_id,
	gene_name, transcript_id, effect_types, impact,
	old_codon, new_codon, old_aa, new_aa,
	cds_base, codon_num, distance, exon_rank,
	hgvsc, hgvsp, issues`

// LookupVariant returns the stored effects of a variant across all runs.
func (s *Store) LookupVariant(chrom string, start int64, ref, alt string) ([]EffectRow, error) {
	return s.queryEffects(`WHERE chrom=? AND start_pos=? AND ref=? AND alt=?`, chrom, start, ref, alt)
}

// SearchByGene returns the stored effects on a gene.
func (s *Store) SearchByGene(geneName string) ([]EffectRow, error) {
	return s.queryEffects(`WHERE gene_name=?`, geneName)
}

// SearchByEffect returns the stored effects that include the given type.
func (s *Store) SearchByEffect(t annotate.EffectType) ([]EffectRow, error) {
	return s.queryEffects(`WHERE list_contains(string_split(effect_types, '+'), ?)`, string(t))
}

// RunEffects returns the effects of one run in input order.
func (s *Store) RunEffects(runID string) ([]EffectRow, error) {
	return s.queryEffects(`WHERE run_id=?`, runID)
}

func (s *Store) queryEffects(where string, args ...any) ([]EffectRow, error) {
	rows, err := s.db.Query(`SELECT `+effectColumns+` FROM effect_results `+where+` ORDER BY run_id, seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("query effects: %w", err)
	}
	defer rows.Close()

	var out []EffectRow
	for rows.Next() {
		var r EffectRow
		if err := rows.Scan(
			&r.RunID, &r.Seq, &r.Chrom, &r.Start, &r.End, &r.Ref, &r.Alt,
			&r.VariantID, &r.VariantKind, &r.FeatureKind, &r.FeatureID,
			&r.GeneName, &r.TranscriptID, &r.EffectTypes, &r.Impact,
			&r.OldCodon, &r.NewCodon, &r.OldAA, &r.NewAA,
			&r.CDSBase, &r.CodonNum, &r.Distance, &r.Rank,
			&r.HGVSc, &r.HGVSp, &r.Issues,
		); err != nil {
			return nil, fmt.Errorf("scan effect: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate effects: %w", err)
	}
	return out, nil
}

// RunInfo summarizes a stored run.
type RunInfo struct {
	ID        string
	Source    string
	StartedAt time.Time
	Variants  int64
	Effects   int64
}

// Runs lists the stored runs, oldest first.
func (s *Store) Runs() ([]RunInfo, error) {
	rows, err := s.db.Query(`SELECT run_id, source, started_at, variants, effects FROM runs ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var ri RunInfo
		if err := rows.Scan(&ri.ID, &ri.Source, &ri.StartedAt, &ri.Variants, &ri.Effects); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, ri)
	}
	return out, rows.Err()
}
