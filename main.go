package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/brandlens/brandlens/internal/ask"
)

func main() {
	app := &cli.App{
		Name:  "brandlens",
		Usage: "Answer a brand question with a generative model and report visibility metrics",
		Commands: []*cli.Command{
			{
				Name:   "ask",
				Usage:  "Run one grounded question and emit a JSON visibility report",
				Action: ask.Action,
				Flags:  ask.Flags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
