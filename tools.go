//go:build tools
// +build tools

package untar

import (
	_ "github.com/jstemmer/go-junit-report/v2"
)
