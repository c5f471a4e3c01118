// Package xmltable turns XML report text into table rows and columns.
//
// Parse runs the whole pipeline: parse the document, detect the record
// elements, flatten each record into a row with derived fields and plan the
// columns. A Session applies parse results to a table engine.
package xmltable

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/xmltab/internal/columns"
	"github.com/oakwood-commons/xmltab/internal/config"
	"github.com/oakwood-commons/xmltab/internal/detect"
	"github.com/oakwood-commons/xmltab/internal/rowbuild"
	"github.com/oakwood-commons/xmltab/pkg/record"
	"github.com/oakwood-commons/xmltab/pkg/xmldoc"
)

// ErrorType classifies parse failures.
type ErrorType string

const (
	ErrorMissingXML ErrorType = "missing-xml"
	ErrorInvalidXML ErrorType = "invalid-xml"
	ErrorNoRecords  ErrorType = "no-records"
)

// User-facing messages for each ErrorType.
const (
	MessageMissingXML = "Select an XML file first."
	MessageInvalidXML = "Invalid XML file. Please choose another file."
	MessageNoRecords  = "No records found. Try a different record tag."
)

var (
	ErrMissingInput    = errors.New("missing xml input")
	ErrInvalidDocument = errors.New("invalid xml document")
	// ErrNoRecords is the detector's sentinel, so errors.Is matches either.
	ErrNoRecords = detect.ErrNoRecords
)

// ParseError is returned by Parse. Message is the text to show a user; Err
// holds the underlying cause.
type ParseError struct {
	Type     ErrorType
	Message  string
	UsedPath string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error type.
func (e *ParseError) Is(target error) bool {
	switch e.Type {
	case ErrorMissingXML:
		return target == ErrMissingInput
	case ErrorInvalidXML:
		return target == ErrInvalidDocument
	case ErrorNoRecords:
		return target == ErrNoRecords
	}
	return false
}

// Options tunes a Parse call.
type Options struct {
	// RecordTag selects records by local name. Blank means auto-detect.
	RecordTag string
	// SimpleView restricts the planned columns to the priority columns.
	SimpleView bool
	// Profile supplies field names, preferred tags and column policy. Nil
	// means the embedded defaults.
	Profile *config.Config
	Logger  logr.Logger
}

// Result is a successful parse.
type Result struct {
	Rows        []*record.Row
	Columns     []string
	UsedPath    string
	RecordCount int
	// Strategy names the detection rule that found the records.
	Strategy detect.Strategy
}

// Parse runs the pipeline over text.
func Parse(text string, opts Options) (*Result, error) {
	return ParseBytes([]byte(text), opts)
}

// ParseBytes is like Parse for raw bytes, honouring the encoding named in the
// XML declaration.
func ParseBytes(data []byte, opts Options) (*Result, error) {
	if len(data) == 0 {
		return nil, &ParseError{Type: ErrorMissingXML, Message: MessageMissingXML}
	}
	profile, err := resolveProfile(opts.Profile)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	doc, err := xmldoc.ParseBytes(data)
	if err != nil {
		log.V(1).Info("xml parse failed", "error", err.Error())
		return nil, &ParseError{Type: ErrorInvalidXML, Message: MessageInvalidXML, Err: err}
	}

	detectOpts := profile.DetectOptions()
	detectOpts.Tag = opts.RecordTag
	detectOpts.Logger = log
	found, err := detect.Detect(doc, detectOpts)
	if err != nil {
		return nil, &ParseError{Type: ErrorNoRecords, Message: MessageNoRecords, UsedPath: found.Path, Err: err}
	}

	rows := rowbuild.New(profile.Fields, log).Build(found.Elements)
	cols := columns.Plan(rows, opts.SimpleView, profile.Columns)
	log.V(1).Info("parsed", "path", found.Path, "records", len(rows), "columns", len(cols))

	return &Result{
		Rows:        rows,
		Columns:     cols,
		UsedPath:    found.Path,
		RecordCount: len(found.Elements),
		Strategy:    found.Strategy,
	}, nil
}

func resolveProfile(p *config.Config) (config.Config, error) {
	if p != nil {
		return *p, nil
	}
	cfg, err := config.Default()
	if err != nil {
		return cfg, fmt.Errorf("load default profile: %w", err)
	}
	return cfg, nil
}
