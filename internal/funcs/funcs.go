package funcs

import (
	"strings"
	"text/template"
	"time"
)

var TemplateFuncs = template.FuncMap{
	"now":        time.Now,
	"formatTime": formatTime,
	"upper":      strings.ToUpper,
	"humanize":   humanize,
}

func formatTime(format string, t time.Time) string {
	return t.Format(format)
}

// humanize turns a snake_case status into words, e.g. ready_for_collection -> ready for collection.
func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
