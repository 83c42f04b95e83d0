package cmapfix

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdftext/core"
	"github.com/tsawler/pdftext/pages"
)

// Document is the object arena the patcher writes into.
type Document interface {
	ObjectResolver
	AddObject(obj core.Object) core.IndirectRef
}

// Result is what happened to one font.
type Result int

const (
	Skipped Result = iota
	Patched
	NoSource
)

func (r Result) String() string {
	switch r {
	case Patched:
		return "patched"
	case NoSource:
		return "no source"
	}
	return "skipped"
}

// Outcome reports the handling of one font name.
type Outcome struct {
	Name     string
	BaseFont string
	Result   Result
	Reason   Reason           // for Skipped
	Origin   Origin           // for Patched
	Ref      core.IndirectRef // the new ToUnicode stream, for Patched
}

func (o Outcome) String() string {
	switch o.Result {
	case Patched:
		return fmt.Sprintf("%s (%s): patched from %s CMap %s", o.Name, o.BaseFont, o.Origin, o.Ref)
	case NoSource:
		return fmt.Sprintf("%s: no ToUnicode source for base font %s", o.Name, o.BaseFont)
	}
	return fmt.Sprintf("%s: skipped, %s", o.Name, o.Reason)
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithInspector replaces the default inspector.
func WithInspector(in *Inspector) Option {
	return func(p *Patcher) { p.inspector = in }
}

// Patcher installs ToUnicode CMaps into Identity-H fonts.
type Patcher struct {
	doc       Document
	locator   Locator
	inspector *Inspector
}

// NewPatcher returns a patcher writing into doc and finding sources with
// locator.
func NewPatcher(doc Document, locator Locator, opts ...Option) *Patcher {
	p := &Patcher{doc: doc, locator: locator}
	for _, opt := range opts {
		opt(p)
	}
	if p.inspector == nil {
		p.inspector = NewInspector(doc)
	}
	return p
}

// PatchPage patches the fonts of a page's effective resources. A page
// without resources has nothing to patch.
func (p *Patcher) PatchPage(page *pages.Page) ([]Outcome, error) {
	res, err := page.Resources()
	if errors.Is(err, pages.ErrNoResources) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page.Number(), err)
	}
	outcomes, err := p.PatchResources(res)
	if err != nil {
		return outcomes, fmt.Errorf("page %d: %w", page.Number(), err)
	}
	return outcomes, nil
}

// PatchResources patches every font declared in resources, in name order.
// It stops at the first I/O error.
func (p *Patcher) PatchResources(resources core.Dict) ([]Outcome, error) {
	fonts, ok := p.inspector.dict(resources.Get("Font"))
	if !ok {
		return nil, nil
	}

	var outcomes []Outcome
	for _, name := range fonts.Keys() {
		c := p.inspector.Classify(resources, name)
		o := Outcome{Name: name, BaseFont: c.BaseFont, Reason: c.Reason}
		if c.Verdict == Patchable {
			if err := p.patch(c, &o); err != nil {
				return outcomes, fmt.Errorf("font %s (%s): %w", name, c.BaseFont, err)
			}
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func (p *Patcher) patch(c Classification, o *Outcome) error {
	loc, ok := p.locator.Locate(c.BaseFont)
	if !ok {
		o.Result = NoSource
		return nil
	}

	src, err := loc.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", loc.Path, err)
	}
	stream, err := core.NewFlateStream(src)
	closeErr := src.Close()
	if err != nil {
		return fmt.Errorf("copy %s: %w", loc.Path, err)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", loc.Path, closeErr)
	}

	// Commit only after the copy succeeded.
	ref := p.doc.AddObject(stream)
	c.Font.Set("ToUnicode", ref)

	o.Result = Patched
	o.Origin = loc.Origin
	o.Ref = ref
	return nil
}
