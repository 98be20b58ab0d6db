package main

import (
	"context"
	"log"
	"os"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"

	"lifequest/internal/container"
	"lifequest/internal/datastore"
	"lifequest/internal/services"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandSeed(),
			commandLeaderboard(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func requiredEnvs() map[string]string {
	vs, err := env.EnvsRequired(
		"DB_DSN",
	)
	if err != nil {
		log.Fatal(err)
	}
	vs["STORE"] = container.STORE_POSTGRES
	return vs
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create tables and indexes",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			vs := requiredEnvs()

			db := datastore.OpenPostgres(vs["DB_DSN"], os.Getenv("DB_PASSWORD"))
			defer db.Close()

			err := datastore.CreateTables(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			log.Println("Migration done")
			return nil
		},
	}
}

func commandSeed() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "write the achievement catalog and config defaults",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			vs := requiredEnvs()
			// seeding never issues tokens
			vs["JWT_SECRET"] = "seed"

			injector := container.New(vs)
			defer injector.Shutdown() //nolint:errcheck

			serviceConfig, err := do.Invoke[*services.ServiceConfig](injector)
			if err != nil {
				log.Fatal(err)
			}
			if err := serviceConfig.SeedDefaults(ctx); err != nil {
				log.Fatal(err)
			}

			serviceAchievement, err := do.Invoke[*services.ServiceAchievement](injector)
			if err != nil {
				log.Fatal(err)
			}
			if err := serviceAchievement.SeedDefaults(ctx); err != nil {
				log.Fatal(err)
			}

			log.Println("Seed done")
			return nil
		},
	}
}
