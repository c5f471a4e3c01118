package xmldoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// ErrEmpty is returned when the input holds no document element.
var ErrEmpty = errors.New("document has no root element")

// SyntaxError reports markup that is not well-formed.
type SyntaxError struct {
	Line int
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parse decodes text into a Document. Any markup error, a missing root, or
// content after the root element yields an error.
func Parse(text string) (*Document, error) {
	return ParseBytes([]byte(text))
}

// ParseBytes is like Parse but accepts raw bytes. Non UTF-8 encodings named in
// the XML declaration are decoded through the IANA charset registry.
func ParseBytes(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = charsetReader

	p := &parser{dec: dec, doc: &Document{}}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

type parser struct {
	dec     *xml.Decoder
	doc     *Document
	current *Element
	closed  bool
}

func (p *parser) run() error {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return p.syntaxError(err)
		}
		if err := p.handle(tok); err != nil {
			return err
		}
	}
	if p.current != nil {
		return p.syntaxError(fmt.Errorf("unclosed element <%s>", p.current.name))
	}
	if p.doc.root == nil {
		return ErrEmpty
	}
	return nil
}

func (p *parser) handle(tok xml.Token) error {
	switch t := tok.(type) {
	case xml.StartElement:
		if p.current == nil && p.closed {
			return p.syntaxError(fmt.Errorf("extra content after document element: <%s>", t.Name.Local))
		}
		el := &Element{
			name:   StripNamespace(t.Name.Local),
			attrs:  convertAttrs(t.Attr),
			parent: p.current,
		}
		p.doc.count++
		if p.current == nil {
			p.doc.root = el
		} else {
			p.current.children = append(p.current.children, el)
		}
		p.current = el
	case xml.EndElement:
		if p.current == nil {
			return p.syntaxError(fmt.Errorf("unexpected end element </%s>", t.Name.Local))
		}
		p.current = p.current.parent
		if p.current == nil {
			p.closed = true
		}
	case xml.CharData:
		if p.current == nil {
			if strings.TrimSpace(string(t)) != "" {
				return p.syntaxError(errors.New("text outside of document element"))
			}
			return nil
		}
		p.current.text.Write(t)
	}
	return nil
}

func (p *parser) syntaxError(err error) error {
	line, _ := p.dec.InputPos()
	var xerr *xml.SyntaxError
	if errors.As(err, &xerr) {
		line = xerr.Line
		err = errors.New(xerr.Msg)
	}
	return &SyntaxError{Line: line, Err: err}
}

// convertAttrs strips namespaces and drops namespace declarations, which
// describe the markup rather than the data.
func convertAttrs(in []xml.Attr) []Attr {
	if len(in) == 0 {
		return nil
	}
	out := make([]Attr, 0, len(in))
	for _, a := range in {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		out = append(out, Attr{Name: StripNamespace(a.Name.Local), Value: a.Value})
	}
	return out
}
