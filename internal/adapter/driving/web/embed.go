package web

import "embed"

// StaticFS holds the embedded dashboard assets (HTML, CSS, JS).
//
//go:embed static/*
var StaticFS embed.FS

// templatesFS holds the operator OAuth page templates.
//
//go:embed templates/*.html
var templatesFS embed.FS
