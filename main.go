package main

import (
	"github.com/joshrmcdaniel/overseerr-requests-bot/cmd"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.SetVersion(version, buildTime)
	cmd.Execute()
}
