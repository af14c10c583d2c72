package web

import "embed"

// TemplatesFS embeds the dashboard and error page templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (stylesheet and chart bootstrap script).
//
//go:embed static/*
var StaticFS embed.FS
