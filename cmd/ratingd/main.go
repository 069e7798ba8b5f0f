package main

import (
	"flag"
	"log"
	"ratingd/internal/di"
	"ratingd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the daemon config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "mirror logs to stdout")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		log.Fatalf("ratingd: %s", err)
	}
}
