package codebase

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// typeFile is the record type of a file; anything else is a directory.
const typeFile = "file"

// Kind keys a scan record may carry, in report order.
var detectionKeys = []string{
	"license_expressions",
	"copyrights",
	"holders",
	"authors",
	"programming_language",
	"packages",
}

var classificationKeys = []string{"is_top_level", "is_legal", "is_readme", "is_manifest"}

// detectionObjectKeys are tried in order when a detection is an object rather than a string.
var detectionObjectKeys = []string{"value", "license_expression", "copyright", "holder", "author"}

//go:embed scan.schema.json
var scanSchema []byte

// Sentinel errors for scan loading.
var (
	ErrInvalidScan   = errors.New("invalid scan")
	ErrMultipleRoots = errors.New("scan has more than one root")
	ErrPathConflict  = errors.New("path is both a file and a directory")
)

// LoadOptions control how a scan becomes a Codebase.
type LoadOptions struct {
	// Ignore drops matching resources and everything below them.
	Ignore *IgnoreFilter

	// Classify recomputes key-file flags even when the scan carries them.
	// Otherwise only the resources whose record carries no flag, and the
	// directories the scan leaves implicit, are classified.
	Classify bool
}

// Scan is a loaded scan: its tree plus the kind names detectors produced.
type Scan struct {
	Codebase *Codebase

	// Kinds lists the tallied kind names: the scan's "tallied_kinds" header when
	// given, otherwise every detection key present on at least one record.
	Kinds []string

	// Classified reports whether any key-file flag was kept from the scan.
	Classified bool
}

type scanDocument struct {
	Headers      []map[string]any  `json:"headers"`
	TalliedKinds []string          `json:"tallied_kinds"`
	Files        []json.RawMessage `json:"files"`
}

type fileRecord struct {
	Path                string        `json:"path"`
	Type                string        `json:"type"`
	IsTopLevel          bool          `json:"is_top_level"`
	IsLegal             bool          `json:"is_legal"`
	IsReadme            bool          `json:"is_readme"`
	IsManifest          bool          `json:"is_manifest"`
	Facets              []string      `json:"facets"`
	LicenseExpressions  detectionList `json:"license_expressions"`
	Copyrights          detectionList `json:"copyrights"`
	Holders             detectionList `json:"holders"`
	Authors             detectionList `json:"authors"`
	ProgrammingLanguage *string       `json:"programming_language"`
	Packages            []Package     `json:"packages"`
}

// detectionList accepts detections as plain strings or as objects such as
// {"holder": "Acme"}.
type detectionList []string

func (d *detectionList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("detections: %w", err)
	}

	out := make(detectionList, 0, len(raw))

	for _, item := range raw {
		text, ok, itemErr := detectionText(item)
		if itemErr != nil {
			return itemErr
		}

		if ok {
			out = append(out, text)
		}
	}

	*d = out

	return nil
}

func detectionText(item json.RawMessage) (string, bool, error) {
	var s string
	if json.Unmarshal(item, &s) == nil {
		return s, s != "", nil
	}

	var obj map[string]any

	err := json.Unmarshal(item, &obj)
	if err != nil {
		return "", false, fmt.Errorf("detection: %w", err)
	}

	for _, key := range detectionObjectKeys {
		if text, ok := obj[key].(string); ok && text != "" {
			return text, true, nil
		}
	}

	return "", false, nil
}

// Validate checks a scan document against the embedded scan schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(scanSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScan, err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		msgs = append(msgs, verr.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidScan, strings.Join(msgs, "; "))
}

// Load reads, validates and builds a scan from r.
func Load(r io.Reader, opts LoadOptions) (*Scan, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scan: %w", err)
	}

	err = Validate(data)
	if err != nil {
		return nil, err
	}

	var doc scanDocument

	err = json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScan, err)
	}

	b := &builder{ignore: opts.Ignore, keys: make(map[string]bool), flagged: make(map[*Resource]bool)}

	for _, raw := range doc.Files {
		err = b.add(raw)
		if err != nil {
			return nil, err
		}
	}

	if b.cb == nil {
		return nil, fmt.Errorf("%w: every resource is ignored", ErrInvalidScan)
	}

	if opts.Classify {
		clear(b.flagged)
	}

	classify(b.cb, b.flagged)

	classified := len(b.flagged) > 0

	kinds := doc.TalliedKinds
	if len(kinds) == 0 {
		kinds = b.presentKinds()
	}

	return &Scan{Codebase: b.cb, Kinds: kinds, Classified: classified}, nil
}

type builder struct {
	cb     *Codebase
	ignore *IgnoreFilter
	keys   map[string]bool
	seen   map[string]bool
	// flagged holds the resources whose record carries a key-file flag.
	flagged map[*Resource]bool
}

func (b *builder) add(raw json.RawMessage) error {
	var rec fileRecord

	err := json.Unmarshal(raw, &rec)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScan, err)
	}

	var present map[string]json.RawMessage

	err = json.Unmarshal(raw, &present)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScan, err)
	}

	segments := strings.Split(strings.Trim(rec.Path, pathSep), pathSep)
	if b.ignored(segments) {
		return nil
	}

	res, err := b.ensure(segments, rec.Type == typeFile)
	if err != nil {
		return err
	}

	if b.seen[res.Path] {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, res.Path)
	}

	b.seen[res.Path] = true

	for _, key := range detectionKeys {
		if _, ok := present[key]; ok {
			b.keys[key] = true
		}
	}

	for _, key := range classificationKeys {
		if _, ok := present[key]; ok {
			b.flagged[res] = true
		}
	}

	return apply(res, &rec)
}

func apply(res *Resource, rec *fileRecord) error {
	det := Detections{
		LicenseExpressions: rec.LicenseExpressions,
		Copyrights:         rec.Copyrights,
		Holders:            rec.Holders,
		Authors:            rec.Authors,
		Packages:           rec.Packages,
	}

	if rec.ProgrammingLanguage != nil {
		det.ProgrammingLanguage = *rec.ProgrammingLanguage
	}

	if !res.IsFile && !det.Empty() {
		return fmt.Errorf("%w: %s", ErrDirectoryDetections, res.Path)
	}

	res.Detections = det
	res.IsTopLevel = rec.IsTopLevel
	res.IsLegal = rec.IsLegal
	res.IsReadme = rec.IsReadme
	res.IsManifest = rec.IsManifest

	if res.IsFile {
		res.Facets = slices.Clone(rec.Facets)
	}

	return nil
}

// ensure returns the resource at segments, creating missing directories on the way.
func (b *builder) ensure(segments []string, isFile bool) (*Resource, error) {
	if b.cb == nil {
		rootIsFile := isFile && len(segments) == 1

		cb, err := New(segments[0], rootIsFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidScan, err)
		}

		b.cb = cb
		b.seen = make(map[string]bool)
	}

	current := b.cb.Root()
	if current.Name != segments[0] {
		return nil, fmt.Errorf("%w: %s and %s", ErrMultipleRoots, current.Name, segments[0])
	}

	for i, name := range segments[1:] {
		last := i == len(segments)-2
		childIsFile := last && isFile

		child, ok := b.cb.Lookup(current.Path + pathSep + name)
		if !ok {
			var err error

			child, err = b.cb.AddChild(current, name, childIsFile)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidScan, err)
			}
		}

		current = child
	}

	if current.IsFile != isFile {
		return nil, fmt.Errorf("%w: %s", ErrPathConflict, current.Path)
	}

	return current, nil
}

func (b *builder) ignored(segments []string) bool {
	for i := 2; i <= len(segments); i++ {
		if b.ignore.ShouldIgnore(strings.Join(segments[1:i], pathSep)) {
			return true
		}
	}

	return false
}

func (b *builder) presentKinds() []string {
	kinds := make([]string, 0, len(detectionKeys))

	for _, key := range detectionKeys {
		if b.keys[key] {
			kinds = append(kinds, key)
		}
	}

	return kinds
}
