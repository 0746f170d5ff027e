// winvoke runs Windows-native executables from inside WSL as if they
// were ordinary local commands: it resolves the target on the Windows
// side, translates paths and environment, re-encodes arguments for the
// native command-line parse, and streams stdio live.
//
// Usage:
//
//	winvoke [flags] -- <command> [args...]
//	winvoke shim <install|list|remove> [options]
//
// When invoked under another name (via an installed shim symlink),
// winvoke bridges that name directly.
package main

import (
	"os"
	"path/filepath"
)

func main() {
	// A shim symlink invokes us under the shimmed command's name.
	if name := filepath.Base(os.Args[0]); name != "winvoke" {
		os.Exit(runShimmed(name, os.Args[1:]))
	}
	os.Exit(execute())
}
