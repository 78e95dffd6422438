package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/ai-nutricare/backend/internal/logging"
)

func main() {
	logging.Init()

	app := &cli.Command{
		Name:  "nutricare",
		Usage: "AI-NutriCare - lab reports to clinical insight and weekly meal plans",
		Commands: []*cli.Command{
			cmdServe,
			cmdExtract,
		},
		DefaultCommand: cmdServe.Name,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
