package xmltable

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/xmltab/internal/config"
	"github.com/oakwood-commons/xmltab/internal/engine"
)

// Session couples a table engine with the file it was loaded from and the
// status line shown to users. It is not safe for concurrent use.
type Session struct {
	Engine  *engine.Engine
	profile config.Config
	log     logr.Logger

	// RecordTag overrides record detection for later loads.
	RecordTag string

	fileName string
	status   string
	path     string
	failed   bool
}

// NewSession builds an engine from profile and its view defaults.
func NewSession(profile config.Config, log logr.Logger) *Session {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	eng := engine.New(profile.Policy(),
		engine.WithLogger(log),
		engine.WithView(profile.View.Simple, profile.View.Grouping, profile.View.SuppressResolved),
	)
	return &Session{Engine: eng, profile: profile, log: log}
}

// Load parses text and, on success, replaces the engine's dataset. A
// no-records failure clears the engine; other failures leave it unchanged.
// The returned error is always a *ParseError.
func (s *Session) Load(fileName, text string) (*Result, error) {
	return s.LoadBytes(fileName, []byte(text))
}

// LoadBytes is Load for raw bytes.
func (s *Session) LoadBytes(fileName string, data []byte) (*Result, error) {
	profile := s.profile
	res, err := ParseBytes(data, Options{
		RecordTag:  s.RecordTag,
		SimpleView: s.Engine.State().SimpleView,
		Profile:    &profile,
		Logger:     s.log,
	})
	if err != nil {
		s.failed = true
		var pe *ParseError
		if errors.As(err, &pe) {
			s.status = pe.Message
			if pe.Type == ErrorNoRecords {
				s.Engine.Clear()
				s.path = ""
				s.fileName = ""
			}
		} else {
			s.status = err.Error()
		}
		s.log.Info("load failed", "file", fileName, "error", err.Error())
		return nil, err
	}

	s.Engine.SetParsedData(res.Rows, res.Columns)
	s.fileName = fileName
	s.path = res.UsedPath
	s.failed = false
	s.status = fmt.Sprintf("Loaded %d records.", res.RecordCount)
	return res, nil
}

// Status is the message of the last load.
func (s *Session) Status() string { return s.status }

// Failed reports whether the last load failed.
func (s *Session) Failed() bool { return s.failed }

// FileName is the file behind the current dataset.
func (s *Session) FileName() string { return s.fileName }

// RecordPath returns "Record path: p" for the current dataset, or "".
func (s *Session) RecordPath() string {
	if s.path == "" {
		return ""
	}
	return "Record path: " + s.path
}

// Meta returns the engine's meta line for the current file.
func (s *Session) Meta() string {
	return s.Engine.Meta(s.fileName)
}
