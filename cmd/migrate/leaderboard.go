package main

import (
	"context"
	"log"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"

	"lifequest/internal/container"
	"lifequest/internal/datastore"
	"lifequest/internal/datastore/redis_store"
	"lifequest/internal/models"
	"lifequest/internal/services"
)

const LEADERBOARD_PAGE_SIZE = 500

// commandLeaderboard rebuilds the xp sorted set from the user table.
func commandLeaderboard() *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "rebuild the xp leaderboard from stored users",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			vs, err := env.EnvsRequired(
				"DB_DSN",
				"REDIS_DB",
			)
			if err != nil {
				log.Fatal(err)
			}
			vs["STORE"] = container.STORE_POSTGRES
			vs["JWT_SECRET"] = "leaderboard"

			injector := container.New(vs)
			defer injector.Shutdown() //nolint:errcheck

			db, err := do.Invoke[*bun.DB](injector)
			if err != nil {
				log.Fatal(err)
			}
			dbRedis, err := do.InvokeNamed[redis.UniversalClient](injector, "redis-db")
			if err != nil {
				log.Fatal(err)
			}

			if err := redis_store.ClearLeaderboard(ctx, dbRedis, services.LEADERBOARD_XP); err != nil {
				log.Fatal(err)
			}

			total := 0
			for offset := 0; ; offset += LEADERBOARD_PAGE_SIZE {
				users, err := datastore.ListUserScores(ctx, db, LEADERBOARD_PAGE_SIZE, offset)
				if err != nil {
					log.Fatal(err)
				}
				if len(users) == 0 {
					break
				}

				for _, user := range users {
					_, err := redis_store.SetLeaderboard(ctx, dbRedis, services.LEADERBOARD_XP, &models.LeaderboardItem{
						UserId: user.ID,
						Score:  float64(user.XP),
					})
					if err != nil {
						log.Println(err)
					}
				}
				total += len(users)
			}

			log.Println("Leaderboard rebuilt, users:", total)
			return nil
		},
	}
}
