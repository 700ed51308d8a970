// Package templates holds the built-in documentation templates. Files with the
// same name in a custom templates directory replace them.
package templates

import "embed"

//go:embed *.tmpl
var FS embed.FS
