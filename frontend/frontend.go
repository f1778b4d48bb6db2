package frontend

import (
	"context"

	"github.com/viant/afs"

	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// Frontend builds a Process Network from an on-disk XML (or legacy GraphML)
// document. File access goes through afs.Service, grounded on
// analyzer/package.go's AnalyzeDir/DownloadWithURL usage of the same
// abstraction, filling spec.md §1's "file-I/O wrappers" collaborator role.
type Frontend struct {
	fs afs.Service
}

// New creates a Frontend backed by the local/afs-supported filesystem.
func New() *Frontend {
	return &Frontend{fs: afs.New()}
}

// Parse reads path, decodes it under whichever of the two accepted dialects
// it matches, builds the IR, and runs the post-check promotion plus the
// invariant check (spec §4.1 "Contract").
func (f *Frontend) Parse(ctx context.Context, path string) (*ir.ProcessNetwork, error) {
	data, err := f.fs.DownloadWithURL(ctx, path)
	if err != nil {
		return nil, errs.Wrap(errs.FileNotFound, err, "reading %q", path)
	}
	if len(data) == 0 {
		return nil, errs.New(errs.FileNotFound, "%q is empty or does not exist", path)
	}

	var doc *xmlProcessNetwork
	if looksLikeGraphML(data) {
		doc, err = decodeGraphML(data)
	} else {
		doc, err = decodeXML(data)
	}
	if err != nil {
		return nil, err
	}

	net, err := Build(doc)
	if err != nil {
		return nil, err
	}

	if err := PostCheck(net); err != nil {
		return nil, err
	}
	return net, nil
}
