package main

import (
	"context"
	"log"
	"os"

	eraser "github.com/database-playground/account-eraser/cli"
	"github.com/database-playground/account-eraser/internal/deps"
)

func main() {
	cfg, err := deps.Config()
	if err != nil {
		log.Fatal(err)
	}

	targets, err := deps.Targets(cfg)
	if err != nil {
		log.Fatal(err)
	}

	redisClient, err := deps.RedisClient(cfg.Redis)
	if err != nil {
		log.Fatal(err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	store, err := deps.RecordStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if store != nil {
		defer func() {
			_ = store.Close()
		}()
	}

	progress := deps.ProgressStore(cfg, redisClient)
	c := eraser.NewContext(deps.Eraser(deps.BackendFactory(cfg), targets, store, progress), progress)

	rootCommand := newRootCommand(
		newTargetsCommand(c),
		newPendingCommand(c),
		newResumeCommand(c),
		newEraseCommand(c),
	)

	if err := rootCommand.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
