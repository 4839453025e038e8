package main

import (
	"flag"
	"fmt"
	"os"

	"barbuddy/internal/di"
	"barbuddy/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug logging to stdout")
	flag.Parse()

	_, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "barbuddy: %s\n", err)
		os.Exit(1)
	}
}
