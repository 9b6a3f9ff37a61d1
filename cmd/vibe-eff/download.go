package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// GENCODE FTP URLs
const (
	gencodeBaseURL = "https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_46"
	gencodeVersion = "v46"
)

// getGENCODEURLs returns the GTF and genome FASTA URLs for the given assembly.
func getGENCODEURLs(assembly string) (gtfURL, fastaURL string) {
	switch strings.ToUpper(assembly) {
	case "GRCH37":
		gtfURL = fmt.Sprintf("%s/GRCh37_mapping/gencode.%slift37.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
		fastaURL = fmt.Sprintf("%s/GRCh37_mapping/GRCh37.primary_assembly.genome.fa.gz", gencodeBaseURL)
	default:
		gtfURL = fmt.Sprintf("%s/gencode.%s.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
		fastaURL = fmt.Sprintf("%s/GRCh38.primary_assembly.genome.fa.gz", gencodeBaseURL)
	}
	return
}

func newDownloadCmd() *cobra.Command {
	var (
		assembly  string
		outputDir string
		gtfOnly   bool
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download GENCODE annotation and genome files",
		Long: `Download the GENCODE gene annotation GTF and the primary assembly genome
FASTA. 'vibe-eff annotate' finds them automatically afterwards.

Files downloaded:
  - gencode.v46.annotation.gtf.gz (~50MB for GRCh38)
  - GRCh38.primary_assembly.genome.fa.gz (~800MB for GRCh38)`,
		Example: `  vibe-eff download
  vibe-eff download --assembly GRCh37
  vibe-eff download --output /data/gencode`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if assembly == "" {
				assembly = viper.GetString("genome.name")
			}
			if outputDir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("cannot determine home directory: %w", err)
				}
				outputDir = filepath.Join(home, ".vibe-eff")
			}

			destDir := filepath.Join(outputDir, strings.ToLower(assembly))
			if err := os.MkdirAll(destDir, 0755); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", destDir, err)
			}

			out := cmd.OutOrStdout()
			gtfURL, fastaURL := getGENCODEURLs(assembly)
			fmt.Fprintf(out, "Downloading GENCODE %s files for %s...\n", gencodeVersion, assembly)
			fmt.Fprintf(out, "Destination: %s\n\n", destDir)

			urls := []string{gtfURL}
			if !gtfOnly {
				urls = append(urls, fastaURL)
			}
			for _, u := range urls {
				if err := downloadFile(cmd.Context(), out, u, filepath.Join(destDir, filepath.Base(u))); err != nil {
					return fmt.Errorf("download %s: %w", filepath.Base(u), err)
				}
			}

			fmt.Fprintf(out, "\nDownload complete!\n")
			fmt.Fprintf(out, "To annotate variants, run:\n")
			fmt.Fprintf(out, "  vibe-eff annotate input.vcf\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&assembly, "assembly", "", "Genome assembly: GRCh37 or GRCh38 (default: genome.name)")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default: ~/.vibe-eff/)")
	cmd.Flags().BoolVar(&gtfOnly, "gtf-only", false, "Only download the GTF (skip the genome FASTA)")
	return cmd
}

// downloadFile downloads a file from URL to the destination path with progress.
func downloadFile(ctx context.Context, out io.Writer, url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(out, "  %s already exists (%s), skipping\n", filepath.Base(destPath), humanize.Bytes(uint64(info.Size())))
		return nil
	}

	fmt.Fprintf(out, "  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{
		Timeout: 2 * time.Hour, // genome FASTA files are large
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{
		out:       out,
		total:     resp.ContentLength,
		lastPrint: time.Now(),
	}
	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(out, "    Done: %s\n", humanize.Bytes(uint64(pw.downloaded)))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	out        io.Writer
	total      int64
	downloaded int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.downloaded += int64(n)

	// Print progress every second
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.out, "\r    Progress: %s / %s (%.1f%%)  ",
				humanize.Bytes(uint64(pw.downloaded)), humanize.Bytes(uint64(pw.total)), pct)
		} else {
			fmt.Fprintf(pw.out, "\r    Progress: %s  ", humanize.Bytes(uint64(pw.downloaded)))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// DefaultGENCODEPath returns the default directory for downloaded files.
func DefaultGENCODEPath(assembly string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".vibe-eff", strings.ToLower(assembly))
}

// FindGENCODEFiles looks for downloaded files in the default location.
// The FASTA is optional.
func FindGENCODEFiles(assembly string) (gtfPath, fastaPath string, found bool) {
	dir := DefaultGENCODEPath(assembly)
	if dir == "" {
		return "", "", false
	}

	gtfURL, fastaURL := getGENCODEURLs(assembly)
	gtfPath = filepath.Join(dir, filepath.Base(gtfURL))
	if !fileExists(gtfPath) {
		return "", "", false
	}

	if p := filepath.Join(dir, filepath.Base(fastaURL)); fileExists(p) {
		fastaPath = p
	}
	return gtfPath, fastaPath, true
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
