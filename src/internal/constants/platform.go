// Package constants defines common constants used across volta
package constants

// Operating systems
const (
	OSWindows = "windows"
	OSDarwin  = "darwin"
	OSLinux   = "linux"
)

// CPU architectures
const (
	ArchAMD64 = "amd64"
	ArchARM64 = "arm64"
	Arch386   = "386"
)

// Shell types
const (
	ShellBash = "bash"
	ShellZsh  = "zsh"
	ShellFish = "fish"
)

// User responses
const (
	ResponseYes = "yes"
	ResponseY   = "y"
	ResponseNo  = "no"
	ResponseN   = "n"
)

// File extensions
const (
	ExtExe = ".exe"
)

// Environment variables the Executor and Session consult.
const (
	EnvVoltaHome      = "VOLTA_HOME"
	EnvVoltaBypass    = "VOLTA_BYPASS"
	EnvVoltaUnsafe    = "VOLTA_UNSAFE_GLOBAL"
	EnvVoltaLogLevel  = "VOLTA_LOGLEVEL"
	EnvRecursionGuard = "_VOLTA_TOOL_RECURSION"
)
