// Package reader loads a PDF file and serves its objects.
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	n, _ := r.PageCount()
//	page, _ := r.Page(0)
//	frags, _ := r.ExtractTextFragments(page)
//
// Objects are parsed lazily and cached by object number. The cache is the
// document's object arena: every caller resolving the same reference gets
// the same Go value, so an in-place change to a dictionary is seen by all
// pages that share it. New objects are appended with [Reader.AddObject].
//
// A Reader is not safe for concurrent use.
package reader
