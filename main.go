package main

import (
	"os"

	"resale-explorer/cli"
	"resale-explorer/utils"
)

func main() {
	if err := cli.Execute(); err != nil {
		utils.NewLogger().Error("%v", err)
		os.Exit(1)
	}
}
