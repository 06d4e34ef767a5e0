// Package web carries the embedded single-page frontend.
package web

import (
	_ "embed"
)

//go:embed index.html
var IndexHTML []byte
