// Package lib provides the standard namespaces of the hosted runtime:
// clojure.core, clojure.string and the contrib string and sequence
// utilities.
package lib

import (
	"context"
	"embed"
	"io/fs"

	"github.com/jonwraymond/hostcall/lisp"
)

//go:embed clj
var sources embed.FS

// Standard returns the native libraries bundled with hostcall.
func Standard() []lisp.Library {
	return []lisp.Library{Core(), String(), StrUtils()}
}

// Sources returns the namespaces bundled as hosted source.
func Sources() fs.FS {
	sub, err := fs.Sub(sources, "clj")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewRuntime returns a runtime with the standard libraries and bundled
// sources installed. Extra options apply after the defaults, so source
// paths passed here are searched after the bundled sources.
func NewRuntime(opts ...lisp.Option) *lisp.Runtime {
	base := []lisp.Option{
		lisp.WithLibraries(Standard()...),
		lisp.WithSourceFS(Sources()),
	}
	return lisp.NewRuntime(append(base, opts...)...)
}

type fnDef struct {
	name     string
	doc      string
	arglists []string
	fn       func(ctx context.Context, args []any) (any, error)
}

func install(ns *lisp.Namespace, defs []fnDef) {
	for _, d := range defs {
		ns.Define(d.name, lisp.Func(d.fn), d.doc, d.arglists...)
	}
}

func sig(list ...string) []string { return list }
