package models

import (
	"path/filepath"
	"strings"
)

// CodeInfoData is the persisted form of a CodeInfo.
type CodeInfoData struct {
	CodeID   string `json:"codeId"`
	WasmPath string `json:"wasmPath"`
}

// CodeInfo binds an uploaded artifact to the code id the chain assigned to it.
// The name is always derived from the artifact path and never stored.
type CodeInfo struct {
	codeID       string
	artifactPath string
	name         string
}

// NewCodeInfo normalizes artifactPath and derives the code name from it.
func NewCodeInfo(codeID, artifactPath string) *CodeInfo {
	p := NormalizePath(artifactPath)
	return &CodeInfo{
		codeID:       codeID,
		artifactPath: p,
		name:         NameFromPath(p),
	}
}

// CodeInfoFromData rebuilds a CodeInfo from its persisted form.
func CodeInfoFromData(d CodeInfoData) *CodeInfo {
	return NewCodeInfo(d.CodeID, d.WasmPath)
}

func (c *CodeInfo) CodeID() string       { return c.codeID }
func (c *CodeInfo) ArtifactPath() string { return c.artifactPath }
func (c *CodeInfo) Name() string         { return c.name }

// Data returns the persisted form.
func (c *CodeInfo) Data() CodeInfoData {
	return CodeInfoData{CodeID: c.codeID, WasmPath: c.artifactPath}
}

// Equal reports whether both entries carry the same code id and path.
func (c *CodeInfo) Equal(other *CodeInfo) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.codeID == other.codeID && c.artifactPath == other.artifactPath
}

// NormalizePath returns an absolute, cleaned, slash-separated path.
func NormalizePath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	} else {
		p = filepath.Clean(p)
	}
	return filepath.ToSlash(p)
}

// NameFromPath returns the base filename with its last extension stripped.
// Dotfiles such as ".env" keep their full name.
func NameFromPath(p string) string {
	base := filepath.Base(filepath.FromSlash(p))
	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}
