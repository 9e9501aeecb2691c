// Package content bundles the default site content into the binary.
package content

import "embed"

// FS holds posts/, pages/ and topics.yml.
//
//go:embed posts pages topics.yml
var FS embed.FS
