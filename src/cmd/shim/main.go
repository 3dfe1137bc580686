// Package main implements volta-shim, the single executable every shim link
// under bin/ points at. It inspects its own invoked name to recover which
// tool it stands in for and hands the rest of the work to internal/executor.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/voltajs/volta/src/internal/executor"
	"github.com/voltajs/volta/src/internal/layout"
	"github.com/voltajs/volta/src/internal/pkginstall"
	"github.com/voltajs/volta/src/internal/session"
	"github.com/voltajs/volta/src/internal/toolchain"

	// Import toolchain providers to register them with toolchain.Default().
	_ "github.com/voltajs/volta/src/internal/toolchain/node"
	_ "github.com/voltajs/volta/src/internal/toolchain/npm"
	_ "github.com/voltajs/volta/src/internal/toolchain/pnpm"
	_ "github.com/voltajs/volta/src/internal/toolchain/yarn"
)

func main() {
	l := layout.Default()
	if err := l.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "volta-shim: %v\n", err)
		os.Exit(1)
	}

	sess := session.New(l)
	hc, err := sess.Hooks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "volta-shim: %v\n", err)
		os.Exit(1)
	}
	registry := toolchain.Default()
	installer := pkginstall.New(l, sess.Inventory(), hc, registry)

	exec := executor.New(sess, registry, installer)
	os.Exit(exec.Run(context.Background(), os.Args))
}
