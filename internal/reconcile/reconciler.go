package reconcile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/neckchi/tripsync/external"
	"github.com/neckchi/tripsync/internal/schema"
	"github.com/neckchi/tripsync/internal/utils"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
)

// HeaderChange records how one file's header was rewritten.
type HeaderChange struct {
	Path      string
	Dest      string
	Provider  external.ProviderCode
	Before    string
	After     string
	Unmatched []string
}

type ReconcilerOption func(*Reconciler)

// WithCaseFolding makes header lookups ignore letter case.
func WithCaseFolding() ReconcilerOption {
	return func(r *Reconciler) {
		r.fold = true
	}
}

func WithProviders(f *external.ProviderFactory) ReconcilerOption {
	return func(r *Reconciler) {
		r.providers = f
	}
}

// Reconciler rewrites CSV headers onto the canonical column names of a mapping.
type Reconciler struct {
	mapping   schema.Mapping
	fold      bool
	providers *external.ProviderFactory
	known     []string
}

func NewReconciler(m schema.Mapping, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{mapping: m, providers: external.NewProviderFactory()}
	for _, fn := range opts {
		fn(r)
	}
	for _, e := range m.Entries() {
		r.known = append(r.known, e.Canonical)
		r.known = append(r.known, e.Names...)
	}
	return r
}

func (r *Reconciler) lookup(name string) (string, bool) {
	if r.fold {
		return r.mapping.LookupFold(name)
	}
	return r.mapping.Lookup(name)
}

// RewriteHeader maps each comma separated token of a header line to its canonical
// name. Quoted tokens stay quoted. Tokens with no match are kept as they are and
// returned in unmatched.
func (r *Reconciler) RewriteHeader(line string) (string, []string) {
	tokens := strings.Split(line, ",")
	out := make([]string, len(tokens))
	var unmatched []string
	for i, tok := range tokens {
		name := strings.TrimSpace(tok)
		quoted := len(name) >= 2 && strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`)
		if quoted {
			name = name[1 : len(name)-1]
		}
		canonical, ok := r.lookup(name)
		if !ok {
			unmatched = append(unmatched, name)
			out[i] = tok
			continue
		}
		if quoted {
			canonical = `"` + canonical + `"`
		}
		out[i] = canonical
	}
	return strings.Join(out, ","), unmatched
}

// ReconcileFile rewrites the header of the CSV at path and writes the result to
// dest/<base name>, leaving data rows byte for byte. An empty dest rewrites in place.
func (r *Reconciler) ReconcileFile(path, dest string) (HeaderChange, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return HeaderChange{}, err
	}
	var rest []byte
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header, rest = data[:i], data[i:]
	}
	crlf := bytes.HasSuffix(header, []byte("\r"))
	before, err := decodeHeader(header)
	if err != nil {
		return HeaderChange{}, fmt.Errorf("%s: %w", path, err)
	}

	after, unmatched := r.RewriteHeader(before)
	profile, _ := r.providers.Detect(strings.Split(before, ","))
	if dest == "" {
		dest = filepath.Dir(path)
	}
	change := HeaderChange{
		Path:      path,
		Dest:      filepath.Join(dest, filepath.Base(path)),
		Provider:  profile.Code,
		Before:    before,
		After:     after,
		Unmatched: unmatched,
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + len(after) - len(before))
	buf.WriteString(after)
	if crlf {
		buf.WriteByte('\r')
	}
	buf.Write(rest)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return change, err
	}
	if err := os.WriteFile(change.Dest, buf.Bytes(), 0644); err != nil {
		return change, err
	}
	return change, nil
}

// ConsistCols reconciles every file into dest and reports each header change.
func (r *Reconciler) ConsistCols(files []string, dest string) ([]HeaderChange, error) {
	changes := make([]HeaderChange, 0, len(files))
	for i, p := range files {
		logger := log.WithFields(log.Fields{"index": i, "file": filepath.Base(p)})
		logger.Infof("Processing %s", p)
		change, err := r.ReconcileFile(p, dest)
		if err != nil {
			return changes, fmt.Errorf("reconcile %s: %w", p, err)
		}
		logger.WithField("provider", change.Provider).Infof("Columns: %s", change.Before)
		logger.Infof("New Columns: %s", change.After)
		for _, name := range change.Unmatched {
			if guess, ok := utils.Closest(name, r.known); ok {
				logger.Warnf("no canonical column for %q (close to %q), kept as is", name, guess)
				continue
			}
			logger.Warnf("no canonical column for %q, kept as is", name)
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// decodeHeader returns the header line as text without its line ending or byte order mark.
func decodeHeader(header []byte) (string, error) {
	line, err := unicode.UTF8BOM.NewDecoder().Bytes(bytes.TrimSuffix(header, []byte("\r")))
	if err != nil {
		return "", err
	}
	return string(line), nil
}
