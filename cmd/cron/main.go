package main

import (
	"log"
	"os"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"

	"lifequest/internal/container"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

type CronJob interface {
	Start(cronRunner *cron.Cron) error
}

func main() {
	vs, err := env.EnvsRequired(
		"JWT_SECRET",
	)
	if err != nil {
		log.Fatal(err)
	}

	injector := container.New(vs)

	app := &cli.App{
		Name: "cronjob",
		Commands: []*cli.Command{
			commandCronjob(injector),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandCronjob(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name: "cron",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "now",
				Usage: "run the daily reset once before scheduling",
			},
		},
		Action: func(c *cli.Context) error {
			dailyJob, err := NewDailyResetJob(injector)
			if err != nil {
				return err
			}

			cronRunner := cron.New()
			jobs := []CronJob{dailyJob}
			for _, job := range jobs {
				if err := job.Start(cronRunner); err != nil {
					return err
				}
			}

			if c.Bool("now") {
				dailyJob.Run()
			}

			log.Println("Start cronjob")
			cronRunner.Run()
			return nil
		},
	}
}
