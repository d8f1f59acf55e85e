package acquire

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	ErrUnsafePath = errors.New("archive entry escapes destination")
	indexPattern  = regexp.MustCompile(`<([^<>]*)>`)
)

// Fetcher downloads a URL into memory.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Ledger remembers which archive URLs have already been fetched.
type Ledger interface {
	Seen(ctx context.Context, url string) (bool, error)
	Record(ctx context.Context, url string, size int64) error
}

// Layout names the directories and files the acquisition steps work with.
type Layout struct {
	IndexFile   string
	DownloadDir string
	ArchiveDir  string
	DataDir     string
}

type Acquirer struct {
	layout Layout
	client Fetcher
	ledger Ledger
}

func NewAcquirer(layout Layout, client Fetcher, ledger Ledger) *Acquirer {
	return &Acquirer{layout: layout, client: client, ledger: ledger}
}

// ParseIndex returns every <...> enclosed token of an index listing that ends in .zip.
func ParseIndex(text string) []string {
	var urls []string
	for _, m := range indexPattern.FindAllStringSubmatch(text, -1) {
		u := strings.TrimSpace(m[1])
		if strings.HasSuffix(u, ".zip") {
			urls = append(urls, u)
		}
	}
	return urls
}

// archiveName is the last path segment of an archive URL.
func archiveName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("no file name in %s", rawURL)
	}
	return name, nil
}

// Download fetches each archive listed in the index file into the download
// directory, skipping URLs the ledger has already seen unless force is set.
// It returns the written paths.
func (a *Acquirer) Download(ctx context.Context, force bool) ([]string, error) {
	text, err := os.ReadFile(a.layout.IndexFile)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	if err := os.MkdirAll(a.layout.DownloadDir, 0755); err != nil {
		return nil, err
	}
	var written []string
	for _, u := range ParseIndex(string(text)) {
		name, err := archiveName(u)
		if err != nil {
			return written, err
		}
		seen := false
		if !force {
			if seen, err = a.ledger.Seen(ctx, u); err != nil {
				log.Warnf("download ledger unavailable for %s: %v", u, err)
			}
		}
		if seen {
			log.Infof("Skipping %s, already downloaded", name)
			continue
		}
		body, err := a.client.Get(ctx, u)
		if err != nil {
			return written, fmt.Errorf("download %s: %w", u, err)
		}
		dest := filepath.Join(a.layout.DownloadDir, name)
		if err := os.WriteFile(dest, body, 0644); err != nil {
			return written, err
		}
		if err := a.ledger.Record(ctx, u, int64(len(body))); err != nil {
			log.Warnf("could not record %s in download ledger: %v", u, err)
		}
		log.WithField("bytes", len(body)).Infof("Downloaded %s", name)
		written = append(written, dest)
	}
	return written, nil
}

// Extract unpacks the CSV members of every archive in the archive directory into
// the data directory. Members whose name starts with an underscore are skipped.
func (a *Acquirer) Extract() ([]string, error) {
	archives, err := filepath.Glob(filepath.Join(a.layout.ArchiveDir, "*.zip"))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(a.layout.DataDir, 0755); err != nil {
		return nil, err
	}
	var extracted []string
	for _, archive := range archives {
		out, err := extractArchive(archive, a.layout.DataDir)
		extracted = append(extracted, out...)
		if err != nil {
			return extracted, fmt.Errorf("extract %s: %w", archive, err)
		}
	}
	return extracted, nil
}

func extractArchive(archive, dest string) ([]string, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	var out []string
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".csv") || strings.HasPrefix(f.Name, "_") {
			continue
		}
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return out, err
		}
		if err := extractFile(f, target); err != nil {
			return out, err
		}
		log.Infof("Extracted %s", f.Name)
		out = append(out, target)
	}
	return out, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

// MoveZips moves every archive in the download directory to the archive directory.
func (a *Acquirer) MoveZips() ([]string, error) {
	if err := os.MkdirAll(a.layout.ArchiveDir, 0755); err != nil {
		return nil, err
	}
	zips, err := filepath.Glob(filepath.Join(a.layout.DownloadDir, "*.zip"))
	if err != nil {
		return nil, err
	}
	var moved []string
	for _, src := range zips {
		dest := filepath.Join(a.layout.ArchiveDir, filepath.Base(src))
		if err := moveFile(src, dest); err != nil {
			return moved, fmt.Errorf("move %s: %w", src, err)
		}
		moved = append(moved, dest)
	}
	return moved, nil
}

// moveFile renames src to dest, copying when the two live on different devices.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		in.Close()
		return err
	}
	_, err = io.Copy(out, in)
	in.Close()
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Remove(src)
}

// Refresh downloads new archives, files them in the archive directory and extracts
// their CSV members.
func (a *Acquirer) Refresh(ctx context.Context, force bool) error {
	if _, err := a.Download(ctx, force); err != nil {
		return err
	}
	if _, err := a.MoveZips(); err != nil {
		return err
	}
	_, err := a.Extract()
	return err
}
