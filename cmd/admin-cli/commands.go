package main

import (
	"context"
	"fmt"
	"time"

	eraser "github.com/database-playground/account-eraser/cli"
	"github.com/urfave/cli/v3"
)

func newTargetsCommand(clictx *eraser.Context) *cli.Command {
	return &cli.Command{
		Name:  "targets",
		Usage: "List the collections deleted for every account, in order",
		Action: func(ctx context.Context, c *cli.Command) error {
			for i, target := range clictx.ListTargets() {
				fmt.Printf("%2d. %s\n", i+1, target)
			}
			fmt.Println(" *. auth identity (always last)")

			return nil
		},
	}
}

func newPendingCommand(clictx *eraser.Context) *cli.Command {
	return &cli.Command{
		Name:  "pending",
		Usage: "List the erasures that have not finished",
		Action: func(ctx context.Context, c *cli.Command) error {
			checkpoints, err := clictx.Pending(ctx)
			if err != nil {
				return err
			}

			if len(checkpoints) == 0 {
				fmt.Println("✅ No unfinished erasures.")
				return nil
			}

			for _, checkpoint := range checkpoints {
				fmt.Printf("%s\t%s\t%d done\tupdated %s\n",
					checkpoint.UserID,
					checkpoint.Phase,
					checkpoint.Completed,
					checkpoint.UpdatedAt.Format(time.RFC3339),
				)
				if checkpoint.Failed() {
					fmt.Printf("\t%s: %s\n", checkpoint.FailedCollection, checkpoint.Error)
				}
			}

			fmt.Println()
			fmt.Println("Use \"resume\" to erase these accounts again.")

			return nil
		},
	}
}

func newResumeCommand(clictx *eraser.Context) *cli.Command {
	return &cli.Command{
		Name:  "resume",
		Usage: "Erase again every account whose erasure has not finished",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Only list the accounts that would be erased.",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return clictx.Resume(ctx, c.Bool("dry-run"))
		},
	}
}

func newEraseCommand(clictx *eraser.Context) *cli.Command {
	return &cli.Command{
		Name:  "erase",
		Usage: "Erase an account and all of its data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user-id",
				Usage:    "The id of the account to erase.",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			userID := c.String("user-id")
			fmt.Println("Erasing account", userID, "…")

			result, err := clictx.Erase(ctx, userID)
			if err != nil {
				return err
			}

			for _, deletion := range result.Deleted {
				fmt.Printf("  - %s: %d rows\n", deletion.Target.Collection, deletion.Rows)
			}
			fmt.Println("✅ Account", userID, "has been erased.")

			return nil
		},
	}
}

func newRootCommand(subcommands ...*cli.Command) *cli.Command {
	return &cli.Command{
		Name:     "admin-cli",
		Usage:    "A CLI tool for operating the account eraser.",
		Commands: subcommands,
	}
}
