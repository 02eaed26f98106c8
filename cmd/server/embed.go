package main

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
)

//go:embed embed/version.txt
var embedVersion string

//go:embed embed/template
var embeddedTemplateFS embed.FS

// embedParameters are the files the server is built with.
type embedParameters struct {
	version    string
	templateFS fs.FS
}

// newEmbedParameters cleans the version and removes the embed prefix from the template file system.
func newEmbedParameters(version string, templateFS fs.FS) (*embedParameters, error) {
	v, err := cleanVersion(version)
	if err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	t, err := unembedFS(templateFS, "template")
	if err != nil {
		return nil, fmt.Errorf("reading template files: %w", err)
	}
	e := embedParameters{
		version:    v,
		templateFS: t,
	}
	return &e, nil
}

// unembedFS returns the embed/subdirectory subdirectory of the file system.
func unembedFS(fsys fs.FS, subdirectory string) (fs.FS, error) {
	dir := filepath.Join("embed", subdirectory)
	return fs.Sub(fsys, dir)
}
