package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/tsawler/pdftext/core"
	"github.com/tsawler/pdftext/font"
	"github.com/tsawler/pdftext/pages"
	"github.com/tsawler/pdftext/text"
)

// ErrEncrypted is returned for documents with an /Encrypt dictionary.
var ErrEncrypted = errors.New("encrypted documents are not supported")

// Version is the PDF version from the file header.
type Version struct {
	Major, Minor int
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// Reader gives access to the objects and pages of one document.
type Reader struct {
	src     io.ReadSeeker
	closer  io.Closer
	xref    *core.XRefTable
	trailer core.Dict
	version Version

	objects    map[int]core.Object
	objStreams map[int]*core.ObjectStream
	loading    map[int]bool
	nextNum    int
	added      []int

	tree *pages.PageTree
}

var _ pages.ObjectResolver = (*Reader)(nil)

// Open opens the file at path. Close releases it.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader reads the header and cross-reference data from rs. A damaged
// xref is rebuilt by scanning the file for object headers.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	r := &Reader{
		src:        rs,
		objects:    map[int]core.Object{},
		objStreams: map[int]*core.ObjectStream{},
		loading:    map[int]bool{},
	}

	v, err := readVersion(rs)
	if err != nil {
		return nil, err
	}
	r.version = v

	xref, err := core.NewXRefParser(rs).ParseAll()
	if err != nil {
		if xref, err = r.reconstruct(); err != nil {
			return nil, fmt.Errorf("read xref: %w", err)
		}
	}
	r.xref = xref
	r.trailer = xref.Trailer

	if r.trailer.Has("Encrypt") {
		return nil, ErrEncrypted
	}

	r.nextNum = xref.MaxObjectNumber() + 1
	if size, ok := r.trailer.GetInt("Size"); ok && int(size) > r.nextNum {
		r.nextNum = int(size)
	}
	return r, nil
}

var versionPattern = regexp.MustCompile(`%PDF-(\d+)\.(\d+)`)

func readVersion(rs io.ReadSeeker) (Version, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Version{}, err
	}
	head := make([]byte, 1024)
	n, err := io.ReadFull(rs, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return Version{}, fmt.Errorf("read header: %w", err)
	}
	m := versionPattern.FindSubmatch(head[:n])
	if m == nil {
		return Version{}, errors.New("not a PDF file: missing %PDF- header")
	}
	major, _ := strconv.Atoi(string(m[1]))
	minor, _ := strconv.Atoi(string(m[2]))
	return Version{Major: major, Minor: minor}, nil
}

func (r *Reader) reconstruct() (*core.XRefTable, error) {
	if _, err := r.src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r.src)
	if err != nil {
		return nil, err
	}
	return core.Reconstruct(data)
}

// Close releases the underlying file when the Reader was created by Open.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Version returns the header version.
func (r *Reader) Version() Version { return r.version }

// Trailer returns the trailer dictionary.
func (r *Reader) Trailer() core.Dict { return r.trailer }

// GetObject returns object num, loading it from the file on first use.
func (r *Reader) GetObject(num int) (core.Object, error) {
	if obj, ok := r.objects[num]; ok {
		return obj, nil
	}
	if r.loading[num] {
		return nil, fmt.Errorf("object %d refers to itself while loading", num)
	}
	r.loading[num] = true
	defer delete(r.loading, num)

	entry, ok := r.xref.Get(num)
	if !ok || entry.Kind == core.EntryFree {
		// References to missing objects resolve to null.
		return core.Null{}, nil
	}

	var obj core.Object
	var err error
	switch entry.Kind {
	case core.EntryInUse:
		obj, err = r.loadAt(num, entry.Offset)
	case core.EntryCompressed:
		obj, err = r.loadCompressed(num, int(entry.Offset), entry.Index)
	}
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", num, err)
	}
	r.objects[num] = obj
	return obj, nil
}

func (r *Reader) loadAt(num int, offset int64) (core.Object, error) {
	if _, err := r.src.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	p := core.NewParser(r.src)
	p.SetReferenceResolver(r)
	iobj, err := p.ParseIndirectObject()
	if err != nil {
		return nil, err
	}
	if iobj.Ref.Number != num {
		return nil, fmt.Errorf("xref points at object %d", iobj.Ref.Number)
	}
	return iobj.Object, nil
}

func (r *Reader) loadCompressed(num, container, index int) (core.Object, error) {
	stm, ok := r.objStreams[container]
	if !ok {
		obj, err := r.GetObject(container)
		if err != nil {
			return nil, err
		}
		s, ok := obj.(*core.Stream)
		if !ok {
			return nil, fmt.Errorf("container %d is %T", container, obj)
		}
		if stm, err = core.NewObjectStream(s); err != nil {
			return nil, err
		}
		r.objStreams[container] = stm
	}
	return stm.Object(num, index)
}

// ResolveReference returns the object ref points to.
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// Resolve follows obj if it is a reference and returns it unchanged otherwise.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	for i := 0; i < 32; i++ {
		ref, ok := obj.(core.IndirectRef)
		if !ok {
			return obj, nil
		}
		var err error
		if obj, err = r.ResolveReference(ref); err != nil {
			return nil, err
		}
	}
	return nil, errors.New("reference chain too long")
}

// AddObject stores obj in the arena under a fresh object number and returns
// a reference to it.
func (r *Reader) AddObject(obj core.Object) core.IndirectRef {
	num := r.nextNum
	r.nextNum++
	r.objects[num] = obj
	r.added = append(r.added, num)
	return core.IndirectRef{Number: num}
}

// AddedObjects returns the numbers allocated by AddObject, in order.
func (r *Reader) AddedObjects() []int {
	return append([]int(nil), r.added...)
}

// Catalog returns the document catalog. When the trailer has no /Root, as
// happens after reconstruction, the first /Type /Catalog object is used.
func (r *Reader) Catalog() (core.Dict, error) {
	if root, ok := r.trailer["Root"]; ok {
		obj, err := r.Resolve(root)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if d, ok := obj.(core.Dict); ok {
			return d, nil
		}
	}

	nums := make([]int, 0, len(r.xref.Entries))
	for n := range r.xref.Entries {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	for _, n := range nums {
		obj, err := r.GetObject(n)
		if err != nil {
			continue
		}
		if d, ok := obj.(core.Dict); ok {
			if t, _ := d.GetName("Type"); t == "Catalog" {
				return d, nil
			}
		}
	}
	return nil, errors.New("document has no catalog")
}

// Info returns the document information dictionary, or nil.
func (r *Reader) Info() core.Dict {
	obj, err := r.Resolve(r.trailer["Info"])
	if err != nil {
		return nil
	}
	d, _ := obj.(core.Dict)
	return d
}

// InfoString returns a text entry of the information dictionary, such as
// Title or Author, decoded from PDFDocEncoding or UTF-16.
func (r *Reader) InfoString(key string) string {
	info := r.Info()
	if info == nil {
		return ""
	}
	obj, err := r.Resolve(info[key])
	if err != nil {
		return ""
	}
	s, ok := obj.(core.String)
	if !ok {
		return ""
	}
	return font.DecodeTextString([]byte(s))
}

// Lang returns the natural language of the document from the catalog's
// /Lang entry, such as "en-US", or "" when absent.
func (r *Reader) Lang() string {
	cat, err := r.Catalog()
	if err != nil {
		return ""
	}
	obj, err := r.Resolve(cat["Lang"])
	if err != nil {
		return ""
	}
	s, _ := obj.(core.String)
	return font.DecodeTextString([]byte(s))
}

func (r *Reader) pageTree() (*pages.PageTree, error) {
	if r.tree != nil {
		return r.tree, nil
	}
	catalog, err := r.Catalog()
	if err != nil {
		return nil, err
	}
	obj, err := r.Resolve(catalog["Pages"])
	if err != nil {
		return nil, fmt.Errorf("resolve /Pages: %w", err)
	}
	root, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("/Pages is %T", obj)
	}
	r.tree = pages.NewPageTree(root, r)
	return r.tree, nil
}

// PageCount returns the number of pages.
func (r *Reader) PageCount() (int, error) {
	t, err := r.pageTree()
	if err != nil {
		return 0, err
	}
	return t.Count()
}

// Page returns the page at a 0-based index.
func (r *Reader) Page(index int) (*pages.Page, error) {
	t, err := r.pageTree()
	if err != nil {
		return nil, err
	}
	return t.Page(index)
}

// ExtractTextFragments runs the page's content through the text extractor
// using the page's current resources. Fonts are read from the arena at this
// point, so repairs applied to the resources beforehand take effect.
func (r *Reader) ExtractTextFragments(page *pages.Page) ([]text.TextFragment, error) {
	content, err := page.Contents()
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, nil
	}

	res, err := page.Resources()
	if errors.Is(err, pages.ErrNoResources) {
		res = core.Dict{}
	} else if err != nil {
		return nil, err
	}

	return text.NewExtractor(r).Extract(content, res)
}
