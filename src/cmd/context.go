package cmd

import (
	"os"

	"github.com/voltajs/volta/src/internal/executor"
	"github.com/voltajs/volta/src/internal/layout"
	"github.com/voltajs/volta/src/internal/pkginstall"
	"github.com/voltajs/volta/src/internal/session"
	"github.com/voltajs/volta/src/internal/toolchain"
	"github.com/voltajs/volta/src/internal/ui"
)

// newSession builds the Session every command runs against, rooted at
// VOLTA_HOME (or the platform default) and ensures its directory layout
// exists before any command touches it.
func newSession() (*session.Session, error) {
	l := layout.Default()
	if err := l.EnsureDirectories(); err != nil {
		return nil, err
	}
	return session.New(l), nil
}

// newInstaller builds a pkginstall.Installer over sess's Layout and
// Inventory, reusing the process-wide toolchain registry populated by each
// provider package's init().
func newInstaller(sess *session.Session) (*pkginstall.Installer, error) {
	hc, err := sess.Hooks()
	if err != nil {
		return nil, err
	}
	return pkginstall.New(sess.Layout(), sess.Inventory(), hc, toolchain.Default()), nil
}

// newFetcher builds a toolchain.Fetcher over sess's Inventory and Hooks,
// reusing the process-wide provider registry.
func newFetcher(sess *session.Session) *toolchain.Fetcher {
	hc, _ := sess.Hooks()
	return toolchain.NewFetcher(sess.Inventory(), hc, toolchain.Default())
}

// newExecutor builds an Executor over sess, reusing the same registry and
// installer every shim invocation dispatches through. Used by commands that
// need to resolve (not invoke) a binary, e.g. which/where.
func newExecutor(sess *session.Session) (*executor.Executor, error) {
	installer, err := newInstaller(sess)
	if err != nil {
		return nil, err
	}
	return executor.New(sess, toolchain.Default(), installer), nil
}

// fail prints err in the CLI's error tone and exits the process with 1. Use
// for unrecoverable setup failures (session/layout construction) that have
// no more specific exit code to report.
func fail(err error) {
	ui.Error("%v", err)
	os.Exit(1)
}
