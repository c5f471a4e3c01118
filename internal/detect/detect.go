// Package detect decides which repeated element represents one table row.
package detect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/xmltab/pkg/xmldoc"
)

// ErrNoRecords is returned when no element matches any strategy.
var ErrNoRecords = errors.New("no records found")

// DefaultPreferredTags are record tags checked, in order, before the
// structural heuristic runs.
var DefaultPreferredTags = []string{"ErrTxtDoc", "ErrPntDtlDoc"}

// Strategy names the rule that produced a Result.
type Strategy string

const (
	StrategyExplicit  Strategy = "explicit"
	StrategyPreferred Strategy = "preferred"
	StrategyHeuristic Strategy = "heuristic"
	StrategyFallback  Strategy = "fallback"
)

// Result holds the detected record elements.
type Result struct {
	Elements []xmldoc.Node
	Path     string
	Tag      string
	Strategy Strategy
}

// NoRecordsError carries the path that was searched.
type NoRecordsError struct {
	Path string
}

func (e *NoRecordsError) Error() string {
	if e.Path == "" {
		return ErrNoRecords.Error()
	}
	return fmt.Sprintf("%s for %q", ErrNoRecords, e.Path)
}

func (e *NoRecordsError) Is(target error) bool {
	return target == ErrNoRecords
}

// Options tunes detection.
type Options struct {
	// Tag, when non-blank, selects records by local name (case-insensitive).
	Tag string
	// Preferred lists record tags tried before the heuristic. Nil means
	// DefaultPreferredTags; an empty non-nil slice disables the list.
	Preferred []string
	Logger    logr.Logger
}

// Detector resolves record elements for a document.
type Detector struct {
	preferred []string
	log       logr.Logger
}

// New returns a Detector for opts.
func New(opts Options) *Detector {
	preferred := opts.Preferred
	if preferred == nil {
		preferred = DefaultPreferredTags
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Detector{preferred: preferred, log: log}
}

// Detect is a convenience wrapper around New(opts).Detect.
func Detect(doc *xmldoc.Document, opts Options) (Result, error) {
	return New(opts).Detect(doc, opts.Tag)
}

// Detect finds the record elements of doc. A blank tag means auto-detect:
// preferred tags first, then the structural heuristic, then the root's
// children as a last resort.
func (d *Detector) Detect(doc *xmldoc.Document, tag string) (Result, error) {
	tag = strings.TrimSpace(tag)
	if tag != "" {
		res := Result{
			Elements: doc.ElementsByName(tag, true),
			Path:     tag,
			Tag:      tag,
			Strategy: StrategyExplicit,
		}
		return d.finish(res)
	}

	if res, ok := d.preferredRecords(doc); ok {
		return d.finish(res)
	}
	return d.finish(d.structural(doc))
}

func (d *Detector) finish(res Result) (Result, error) {
	if len(res.Elements) == 0 {
		d.log.V(1).Info("no records detected", "strategy", res.Strategy, "path", res.Path)
		return res, &NoRecordsError{Path: res.Path}
	}
	d.log.V(1).Info("records detected", "strategy", res.Strategy, "path", res.Path, "count", len(res.Elements))
	return res, nil
}

func (d *Detector) preferredRecords(doc *xmldoc.Document) (Result, bool) {
	for _, tag := range d.preferred {
		nodes := doc.ElementsByName(tag, false)
		if len(nodes) == 0 {
			continue
		}
		return Result{
			Elements: nodes,
			Path:     xmldoc.Path(nodes[0]),
			Tag:      tag,
			Strategy: StrategyPreferred,
		}, true
	}
	return Result{}, false
}

type pathGroup struct {
	path     string
	fieldSum int
	elements []xmldoc.Node
}

// structural groups every element by its local-name path and scores groups of
// two or more members by (averageFieldCount+1)*memberCount, where the field
// count of an element is its attribute count plus its direct child count. The
// first group reaching the maximum score wins.
func (d *Detector) structural(doc *xmldoc.Document) Result {
	root := doc.Root()
	if root == nil {
		return Result{Strategy: StrategyFallback}
	}

	var order []*pathGroup
	groups := make(map[string]*pathGroup)
	xmldoc.Walk(root, func(n xmldoc.Node) bool {
		path := xmldoc.Path(n)
		g, ok := groups[path]
		if !ok {
			g = &pathGroup{path: path}
			groups[path] = g
			order = append(order, g)
		}
		g.fieldSum += len(n.Attrs()) + len(n.Children())
		g.elements = append(g.elements, n)
		return true
	})

	var best *pathGroup
	bestScore := 0.0
	for _, g := range order {
		count := len(g.elements)
		if count < 2 {
			continue
		}
		score := Score(g.fieldSum, count)
		if best == nil || score > bestScore {
			best, bestScore = g, score
		}
	}

	if best == nil {
		elements := root.Children()
		if len(elements) == 0 {
			elements = []xmldoc.Node{root}
		}
		return Result{
			Elements: elements,
			Path:     root.LocalName(),
			Strategy: StrategyFallback,
		}
	}

	d.log.V(1).Info("structural heuristic", "path", best.path, "score", bestScore, "groups", len(order))
	return Result{
		Elements: best.elements,
		Path:     best.path,
		Tag:      best.path[strings.LastIndex(best.path, "/")+1:],
		Strategy: StrategyHeuristic,
	}
}

// Score is the heuristic weight of a path group.
func Score(fieldSum, count int) float64 {
	avg := float64(fieldSum) / float64(count)
	return (avg + 1) * float64(count)
}
