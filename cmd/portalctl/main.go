package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/campushq/go-placement-client/internal/config"
)

func main() {
	_ = godotenv.Load()

	c := config.New()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if c.GetEnv() != "DEV" {
		log = log.Level(zerolog.InfoLevel)
	}

	if err := newRootCmd(c, log).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func displayAppName(appName string) {
	myFigure := figure.NewFigure(appName, "", true)
	myFigure.Print()
}
