package solnotes

import "embed"

// EmbeddedAssets contains static assets shipped with solnotes:
// solnotes.css and admin.js.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
