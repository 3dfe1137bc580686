package main

import (
	"github.com/voltajs/volta/src/cmd"

	// Import toolchain providers to register them with toolchain.Default().
	_ "github.com/voltajs/volta/src/internal/toolchain/node"
	_ "github.com/voltajs/volta/src/internal/toolchain/npm"
	_ "github.com/voltajs/volta/src/internal/toolchain/pnpm"
	_ "github.com/voltajs/volta/src/internal/toolchain/yarn"
)

func main() {
	cmd.Execute()
}
