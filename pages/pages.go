package pages

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdftext/core"
)

// ObjectResolver resolves indirect references. Direct objects are returned
// unchanged.
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// ErrNoResources is returned when neither a page nor its ancestors carry a
// resource dictionary.
var ErrNoResources = errors.New("page has no resources")

// PageTree is the flattened view of a document's page tree.
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	pages    []*Page
}

// NewPageTree returns a tree rooted at the catalog's /Pages dictionary.
func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{root: root, resolver: resolver}
}

// Count returns the number of page leaves. /Count is not trusted.
func (t *PageTree) Count() (int, error) {
	if err := t.load(); err != nil {
		return 0, err
	}
	return len(t.pages), nil
}

// Page returns the page at a 0-based index.
func (t *PageTree) Page(index int) (*Page, error) {
	if err := t.load(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(t.pages) {
		return nil, fmt.Errorf("page index %d out of range [0,%d)", index, len(t.pages))
	}
	return t.pages[index], nil
}

// Pages returns every page in order.
func (t *PageTree) Pages() ([]*Page, error) {
	if err := t.load(); err != nil {
		return nil, err
	}
	return t.pages, nil
}

func (t *PageTree) load() error {
	if t.pages != nil {
		return nil
	}
	pages := []*Page{}
	if err := t.walk(t.root, nil, map[int]bool{}, &pages); err != nil {
		return fmt.Errorf("page tree: %w", err)
	}
	t.pages = pages
	return nil
}

// walk visits node depth first. ancestors runs from the immediate parent up
// to the root. visited holds object numbers of nodes on the current path
// so a Kids cycle terminates.
func (t *PageTree) walk(node core.Dict, ancestors []core.Dict, visited map[int]bool, out *[]*Page) error {
	typ, _ := node.GetName("Type")
	kidsObj, hasKids := node["Kids"]
	if typ == "Page" || (typ != "Pages" && !hasKids) {
		*out = append(*out, &Page{dict: node, ancestors: ancestors, resolver: t.resolver, index: len(*out)})
		return nil
	}

	kidsObj, err := t.resolver.Resolve(kidsObj)
	if err != nil {
		return fmt.Errorf("resolve /Kids: %w", err)
	}
	kids, ok := kidsObj.(core.Array)
	if !ok {
		return fmt.Errorf("/Kids is %T", kidsObj)
	}

	chain := append([]core.Dict{node}, ancestors...)
	for i, kid := range kids {
		ref, isRef := kid.(core.IndirectRef)
		if isRef {
			if visited[ref.Number] {
				return fmt.Errorf("cycle through object %d", ref.Number)
			}
			visited[ref.Number] = true
		}
		resolved, err := t.resolver.Resolve(kid)
		if err != nil {
			return fmt.Errorf("kid %d: %w", i, err)
		}
		dict, ok := resolved.(core.Dict)
		if !ok {
			return fmt.Errorf("kid %d is %T", i, resolved)
		}
		if err := t.walk(dict, chain, visited, out); err != nil {
			return err
		}
		if isRef {
			delete(visited, ref.Number)
		}
	}
	return nil
}

// Page is one leaf of the page tree.
type Page struct {
	dict      core.Dict
	ancestors []core.Dict
	resolver  ObjectResolver
	index     int
}

// NewPage wraps a page dictionary. ancestors lists the Pages nodes from the
// immediate parent upwards and may be empty.
func NewPage(dict core.Dict, resolver ObjectResolver, ancestors ...core.Dict) *Page {
	return &Page{dict: dict, ancestors: ancestors, resolver: resolver}
}

// Dict returns the page dictionary itself.
func (p *Page) Dict() core.Dict { return p.dict }

// Number returns the 1-based page number.
func (p *Page) Number() int { return p.index + 1 }

// inherited returns the attribute from the page or the nearest ancestor
// that defines it, resolved.
func (p *Page) inherited(key string) (core.Object, error) {
	obj, ok := p.dict[key]
	for i := 0; !ok && i < len(p.ancestors); i++ {
		obj, ok = p.ancestors[i][key]
	}
	if !ok {
		return nil, nil
	}
	return p.resolver.Resolve(obj)
}

// Resources returns the page's resource dictionary. The returned Dict is
// the shared object from the document, so changes to it are visible to
// every page that inherits or references it.
func (p *Page) Resources() (core.Dict, error) {
	obj, err := p.inherited("Resources")
	if err != nil {
		return nil, fmt.Errorf("resolve /Resources: %w", err)
	}
	if obj == nil {
		return nil, ErrNoResources
	}
	res, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("/Resources is %T", obj)
	}
	return res, nil
}

// MediaBox returns the media box, defaulting to US Letter.
func (p *Page) MediaBox() [4]float64 {
	if box, ok := p.box("MediaBox"); ok {
		return box
	}
	return [4]float64{0, 0, 612, 792}
}

// CropBox returns the crop box, defaulting to the media box.
func (p *Page) CropBox() [4]float64 {
	if box, ok := p.box("CropBox"); ok {
		return box
	}
	return p.MediaBox()
}

func (p *Page) box(key string) ([4]float64, bool) {
	var box [4]float64
	obj, err := p.inherited(key)
	if err != nil {
		return box, false
	}
	arr, ok := obj.(core.Array)
	if !ok || len(arr) != 4 {
		return box, false
	}
	for i := range box {
		v, ok := core.Number(arr[i])
		if !ok {
			return box, false
		}
		box[i] = v
	}
	if box[0] > box[2] {
		box[0], box[2] = box[2], box[0]
	}
	if box[1] > box[3] {
		box[1], box[3] = box[3], box[1]
	}
	return box, true
}

// Width and Height are taken from the media box.
func (p *Page) Width() float64 {
	b := p.MediaBox()
	return b[2] - b[0]
}

func (p *Page) Height() float64 {
	b := p.MediaBox()
	return b[3] - b[1]
}

// Rotate returns the page rotation normalised to 0, 90, 180 or 270.
func (p *Page) Rotate() int {
	obj, _ := p.inherited("Rotate")
	r, ok := obj.(core.Int)
	if !ok || r%90 != 0 {
		return 0
	}
	return int((r%360 + 360) % 360)
}

// Contents returns the decoded content streams of the page, concatenated
// with a newline between streams. A page without /Contents yields nil.
func (p *Page) Contents() ([]byte, error) {
	obj, err := p.resolver.Resolve(p.dict["Contents"])
	if err != nil {
		return nil, fmt.Errorf("resolve /Contents: %w", err)
	}

	var streams []core.Object
	switch v := obj.(type) {
	case nil:
		return nil, nil
	case *core.Stream:
		streams = []core.Object{v}
	case core.Array:
		streams = v
	default:
		return nil, fmt.Errorf("/Contents is %T", obj)
	}

	var data []byte
	for i, s := range streams {
		resolved, err := p.resolver.Resolve(s)
		if err != nil {
			return nil, fmt.Errorf("contents[%d]: %w", i, err)
		}
		stream, ok := resolved.(*core.Stream)
		if !ok {
			continue
		}
		decoded, err := stream.Decode()
		if err != nil {
			return nil, fmt.Errorf("contents[%d]: %w", i, err)
		}
		if len(data) > 0 {
			data = append(data, '\n')
		}
		data = append(data, decoded...)
	}
	return data, nil
}
