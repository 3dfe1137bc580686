// Package ui provides colored console output utilities for user interfaces
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	// Color functions for different message types
	successColor  = color.New(color.FgGreen, color.Bold)
	errorColor    = color.New(color.FgRed, color.Bold)
	warningColor  = color.New(color.FgYellow, color.Bold)
	infoColor     = color.New(color.FgCyan)
	progressColor = color.New(color.FgBlue)
	debugColor    = color.New(color.FgHiBlack)

	// Symbols
	successSymbol = "✓"
	errorSymbol   = "✗"
	warningSymbol = "⚠"
	infoSymbol    = "→"
	debugSymbol   = "·"
)

// verboseMode gates Debug/Debugf output. It is a single on/off switch set by
// SetVerbose and turned on by CheckVerboseEnv when VOLTA_LOGLEVEL is "debug";
// no other log level is distinguished.
var verboseMode bool

// SetVerbose toggles debug-level output directly, overriding whatever
// VOLTA_LOGLEVEL previously set.
func SetVerbose(v bool) {
	verboseMode = v
}

// IsVerbose reports whether debug-level output is currently enabled.
func IsVerbose() bool {
	return verboseMode
}

// CheckVerboseEnv reads VOLTA_LOGLEVEL and enables debug output when it is
// "debug" (case-insensitive). Any other value, or the variable being unset,
// leaves the current setting untouched rather than forcing it off, so an
// explicit SetVerbose(true) from a --verbose flag is not clobbered.
func CheckVerboseEnv() {
	level := strings.ToLower(strings.TrimSpace(os.Getenv("VOLTA_LOGLEVEL")))
	if level == "debug" {
		verboseMode = true
	}
}

// Debug prints a debug message in dim gray with a bullet, only when verbose
// output is enabled.
func Debug(format string, args ...interface{}) {
	if !verboseMode {
		return
	}
	message := fmt.Sprintf(format, args...)
	_, _ = debugColor.Printf("%s %s\n", debugSymbol, message)
}

// Debugf is an alias of Debug kept for call sites that prefer the "f"
// naming convention used by the rest of the standard library's print family.
func Debugf(format string, args ...interface{}) {
	Debug(format, args...)
}

// Success prints a success message in green with a checkmark
func Success(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	_, _ = successColor.Printf("%s %s\n", successSymbol, message)
}

// Error prints an error message in red with an X
func Error(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	_, _ = errorColor.Printf("%s %s\n", errorSymbol, message)
}

// Warning prints a warning message in yellow with a warning symbol
func Warning(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	_, _ = warningColor.Printf("%s %s\n", warningSymbol, message)
}

// Info prints an info message in cyan with an arrow
func Info(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	_, _ = infoColor.Printf("%s %s\n", infoSymbol, message)
}

// Progress prints a progress message in blue with an arrow
func Progress(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	_, _ = progressColor.Printf("  %s %s\n", infoSymbol, message)
}

// Println prints a regular message without color
func Println(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// Printf prints a regular message without color (no newline)
func Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// Header prints a bold header message
func Header(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	bold := color.New(color.Bold)
	_, _ = bold.Println(message)
}

// Highlight returns text wrapped in a highlighted color (for emphasis)
func Highlight(text string) string {
	return color.New(color.FgCyan, color.Bold).Sprint(text)
}

// HighlightVersion returns a version string wrapped in a highlighted color
func HighlightVersion(version string) string {
	return color.New(color.FgMagenta, color.Bold).Sprint(version)
}
