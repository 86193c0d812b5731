package appfs

import "embed"

// FS holds all non-code assets shipped with the binary: goose migrations,
// email templates and the common-passwords list. The all: prefix keeps the
// underscore-prefixed base templates in.
//
//go:embed migrations all:templates assets
var FS embed.FS
