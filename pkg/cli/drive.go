package cli

import (
	"context"
	"strings"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/usecase/drive"
	"github.com/urfave/cli/v3"
)

func driveCommand() *cli.Command {
	return &cli.Command{
		Name:  "drive",
		Usage: "Browse the shared Drive folder",
		Commands: []*cli.Command{
			driveListCommand(),
		},
	}
}

func driveListCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, driveFlags(&cfg)...)

	return &cli.Command{
		Name:      "ls",
		Usage:     "Show the folder tree",
		ArgsUsage: "[folder]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.withLogger(ctx)
			if err != nil {
				return err
			}

			d, err := cfg.newDrive(ctx)
			if err != nil {
				return err
			}
			uc := drive.New(d, nil)

			resp, err := uc.Execute(ctx, &model.StorageIntent{
				Action: model.StorageActionList,
				Name:   strings.TrimSpace(strings.Join(c.Args().Slice(), " ")),
			})
			if err != nil {
				return err
			}
			printResult(c.Root().Writer, resp.Result)
			return nil
		},
	}
}
