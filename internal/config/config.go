// Package config loads vibe-eff settings through viper and converts them
// into the option structs the genome builder and predictor take.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-eff/internal/annotate"
	"github.com/inodb/vibe-eff/internal/genome"
)

// FileName is the config file looked up in the home directory.
const FileName = ".vibe-eff.yaml"

// EnvPrefix prefixes environment overrides, e.g. VIBE_EFF_ANNOTATE_STRICT.
const EnvPrefix = "VIBE_EFF"

// ErrInvalid is returned for settings that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full set of settings. It is not modified after Load.
type Config struct {
	Genome   GenomeConfig   `mapstructure:"genome"`
	Codon    CodonConfig    `mapstructure:"codon"`
	Annotate AnnotateConfig `mapstructure:"annotate"`
	Log      LogConfig      `mapstructure:"log"`
}

type GenomeConfig struct {
	Name                  string `mapstructure:"name"`
	UpstreamLength        int    `mapstructure:"upstream_length"`
	DownstreamLength      int    `mapstructure:"downstream_length"`
	SpliceSiteSize        int    `mapstructure:"splice_site_size"`
	SpliceRegionExonSize  int    `mapstructure:"splice_region_exon_size"`
	SpliceRegionIntronMin int    `mapstructure:"splice_region_intron_min"`
	SpliceRegionIntronMax int    `mapstructure:"splice_region_intron_max"`
}

type CodonConfig struct {
	Table       int            `mapstructure:"table"`
	Chromosomes map[string]int `mapstructure:"chromosomes"`
}

type AnnotateConfig struct {
	Strict    bool `mapstructure:"strict"`
	HGVS      bool `mapstructure:"hgvs"`
	Workers   int  `mapstructure:"workers"`
	CacheSize int  `mapstructure:"cache_size"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	d := genome.DefaultBuildOptions()
	v.SetDefault("genome.name", "GRCh38")
	v.SetDefault("genome.upstream_length", d.UpstreamLength)
	v.SetDefault("genome.downstream_length", d.DownstreamLength)
	v.SetDefault("genome.splice_site_size", d.SpliceSiteSize)
	v.SetDefault("genome.splice_region_exon_size", d.SpliceRegionExonSize)
	v.SetDefault("genome.splice_region_intron_min", d.SpliceRegionIntronMin)
	v.SetDefault("genome.splice_region_intron_max", d.SpliceRegionIntronMax)
	v.SetDefault("codon.table", 1)
	v.SetDefault("codon.chromosomes", map[string]int{"MT": 2, "M": 2})
	v.SetDefault("annotate.strict", false)
	v.SetDefault("annotate.hgvs", true)
	v.SetDefault("annotate.workers", 0)
	v.SetDefault("annotate.cache_size", 0)
	v.SetDefault("log.level", "info")
}

// Init points v at cfgFile, or at ~/.vibe-eff.yaml when cfgFile is empty,
// enables environment overrides and reads the file if it exists.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		v.SetConfigFile(filepath.Join(home, FileName))
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) || isNotFound(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	g := c.Genome
	for _, n := range []struct {
		key string
		val int
	}{
		{"genome.upstream_length", g.UpstreamLength},
		{"genome.downstream_length", g.DownstreamLength},
		{"genome.splice_site_size", g.SpliceSiteSize},
		{"genome.splice_region_exon_size", g.SpliceRegionExonSize},
		{"genome.splice_region_intron_min", g.SpliceRegionIntronMin},
		{"genome.splice_region_intron_max", g.SpliceRegionIntronMax},
		{"annotate.workers", c.Annotate.Workers},
		{"annotate.cache_size", c.Annotate.CacheSize},
	} {
		if n.val < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalid, n.key)
		}
	}
	if g.SpliceRegionIntronMin > g.SpliceRegionIntronMax {
		return fmt.Errorf("%w: genome.splice_region_intron_min exceeds genome.splice_region_intron_max", ErrInvalid)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}

// BuildOptions returns the genome build options.
func (c *Config) BuildOptions() genome.BuildOptions {
	g := c.Genome
	return genome.BuildOptions{
		UpstreamLength:        g.UpstreamLength,
		DownstreamLength:      g.DownstreamLength,
		SpliceSiteSize:        g.SpliceSiteSize,
		SpliceRegionExonSize:  g.SpliceRegionExonSize,
		SpliceRegionIntronMin: g.SpliceRegionIntronMin,
		SpliceRegionIntronMax: g.SpliceRegionIntronMax,
	}
}

// CodonTables builds the per-chromosome translation tables. Viper lower
// cases map keys, so chromosome names are upper cased with any "chr"
// prefix removed.
func (c *Config) CodonTables() (*genome.CodonTables, error) {
	chroms := make(map[string]int, len(c.Codon.Chromosomes))
	for name, idx := range c.Codon.Chromosomes {
		chroms[strings.ToUpper(genome.NormalizeChrom(strings.ToLower(name)))] = idx
	}
	tables, err := genome.NewCodonTables(c.Codon.Table, chroms)
	if err != nil {
		return nil, fmt.Errorf("%w: codon tables: %v", ErrInvalid, err)
	}
	return tables, nil
}

// PredictorOptions returns the predictor options, codon tables included.
func (c *Config) PredictorOptions() (annotate.Options, error) {
	tables, err := c.CodonTables()
	if err != nil {
		return annotate.Options{}, err
	}
	return annotate.Options{
		CodonTables: tables,
		Strict:      c.Annotate.Strict,
		HGVS:        c.Annotate.HGVS,
		CacheSize:   c.Annotate.CacheSize,
	}, nil
}

// NewLogger builds a zap logger at the configured level. Debug selects the
// development encoder.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
