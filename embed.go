package guide

import (
	"embed"
	"errors"
	"io/fs"
	"os"
)

// The default stylesheet and favicon served under /public/ when the static
// directory does not override them.
//
//go:embed embedded/*
var embedded embed.FS

// Assets returns the embedded /public/ files.
func Assets() fs.FS {
	sub, err := fs.Sub(embedded, "embedded")
	if err != nil {
		panic(err)
	}
	return sub
}

// PublicFS is everything served under /public/: files in StaticDir shadow
// the embedded defaults.
func (a *App) PublicFS() fs.FS {
	if a.Config.StaticDir == "" {
		return Assets()
	}
	return overlayFS{os.DirFS(a.Config.StaticDir), Assets()}
}

// overlayFS opens name from the first layer that has it.
type overlayFS []fs.FS

func (o overlayFS) Open(name string) (fs.File, error) {
	err := error(fs.ErrNotExist)
	for _, layer := range o {
		f, openErr := layer.Open(name)
		if openErr == nil {
			return f, nil
		}
		if !errors.Is(openErr, fs.ErrNotExist) {
			err = openErr
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: err}
}
