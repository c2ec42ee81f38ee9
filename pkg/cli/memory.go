package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func memoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "memory",
		Usage: "Inspect and edit the memory document",
		Commands: []*cli.Command{
			memoryListCommand(),
			memorySearchCommand(),
			memoryAddCommand(),
			memoryForgetCommand(),
			memoryVoteCommand(),
			memoryRulesCommand(),
			memoryExportCommand(),
		},
	}
}

// memoryAction sets up the logger and the memory usecase before run
func memoryAction(cfg *config, run func(ctx context.Context, c *cli.Command, mem *memory.UseCase) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		ctx, err := cfg.withLogger(ctx)
		if err != nil {
			return err
		}
		mem, err := cfg.newMemory(ctx)
		if err != nil {
			return err
		}
		return run(ctx, c, mem)
	}
}

func memoryFlags(cfg *config, flags ...cli.Flag) []cli.Flag {
	flags = append(flags, globalFlags(cfg)...)
	flags = append(flags, backendFlags(cfg)...)
	flags = append(flags, driveFlags(cfg)...)
	return flags
}

func argsText(c *cli.Command) (string, error) {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return "", goerr.New("text argument is required")
	}
	return text, nil
}

func memoryListCommand() *cli.Command {
	var (
		cfg      config
		limit    int64
		category string
		domain   string
	)

	flags := memoryFlags(&cfg,
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Number of most recent memories to show",
			Value:       10,
			Destination: &limit,
		},
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Show a category instead of free memories",
			Destination: &category,
		},
		&cli.StringFlag{
			Name:        "domain",
			Usage:       "Show a domain instead of free memories",
			Destination: &domain,
		},
	)

	return &cli.Command{
		Name:  "list",
		Usage: "List recent memories",
		Flags: flags,
		Action: memoryAction(&cfg, func(ctx context.Context, c *cli.Command, mem *memory.UseCase) error {
			var (
				items []*model.MemoryItem
				err   error
			)
			switch {
			case category != "":
				items, err = mem.ListByCategory(ctx, category, int(limit))
			case domain != "":
				items, err = mem.ListByDomain(ctx, domain, int(limit))
			default:
				items, err = mem.ListMemories(ctx, int(limit))
			}
			if err != nil {
				return err
			}

			if len(items) == 0 {
				fmt.Fprintln(c.Root().Writer, "No memory stored.")
				return nil
			}
			printItems(c.Root().Writer, items)
			return nil
		}),
	}
}

func memorySearchCommand() *cli.Command {
	var (
		cfg     config
		topK    int64
		dynamic bool
		pins    []string
		masks   []string
	)

	flags := memoryFlags(&cfg,
		&cli.IntFlag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "Maximum number of hits",
			Value:       memory.DefaultTopK,
			Destination: &topK,
		},
		&cli.BoolFlag{
			Name:        "dynamic",
			Usage:       "Pick the number of hits from the query length",
			Destination: &dynamic,
		},
		&cli.StringSliceFlag{
			Name:        "pin",
			Usage:       "Always show the first memory containing this text (repeatable)",
			Destination: &pins,
		},
		&cli.StringSliceFlag{
			Name:        "mask",
			Usage:       "Never show the first memory containing this text (repeatable)",
			Destination: &masks,
		},
	)

	return &cli.Command{
		Name:      "search",
		Usage:     "Rank memories against a query",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: memoryAction(&cfg, func(ctx context.Context, c *cli.Command, mem *memory.UseCase) error {
			query, err := argsText(c)
			if err != nil {
				return err
			}

			pinKeys, err := mem.ItemKeys(ctx, pins)
			if err != nil {
				return err
			}
			maskKeys, err := mem.ItemKeys(ctx, masks)
			if err != nil {
				return err
			}

			hits, err := mem.Search(ctx, query, memory.SearchOptions{
				TopK:         int(topK),
				DynamicLimit: dynamic,
				Pins:         pinKeys,
				Masks:        maskKeys,
			})
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Fprintln(c.Root().Writer, "No relevant memory.")
				return nil
			}
			printRanked(c.Root().Writer, hits)
			return nil
		}),
	}
}

func memoryAddCommand() *cli.Command {
	var (
		cfg      config
		category string
		domain   string
	)

	flags := memoryFlags(&cfg,
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Store in a category",
			Destination: &category,
		},
		&cli.StringFlag{
			Name:        "domain",
			Usage:       "Store in a domain",
			Destination: &domain,
		},
	)

	return &cli.Command{
		Name:      "add",
		Usage:     "Remember a fact",
		ArgsUsage: "<text>",
		Flags:     flags,
		Action: memoryAction(&cfg, func(ctx context.Context, c *cli.Command, mem *memory.UseCase) error {
			if category != "" && domain != "" {
				return goerr.New("category and domain are exclusive")
			}
			text, err := argsText(c)
			if err != nil {
				return err
			}

			var msg *model.Message
			switch {
			case category != "":
				msg, err = mem.RememberCategorized(ctx, category, text)
			case domain != "":
				msg, err = mem.RememberInDomain(ctx, domain, text)
			default:
				msg, err = mem.RememberFreeform(ctx, text)
			}
			if err != nil {
				return err
			}
			printMessage(c.Root().Writer, msg)
			return nil
		}),
	}
}

func memoryForgetCommand() *cli.Command {
	var (
		cfg config
		yes bool
	)

	flags := memoryFlags(&cfg,
		&cli.BoolFlag{
			Name:        "yes",
			Aliases:     []string{"y"},
			Usage:       "Delete without asking",
			Destination: &yes,
		},
	)

	return &cli.Command{
		Name:      "forget",
		Usage:     "Delete the first memory containing the text",
		ArgsUsage: "<text>",
		Flags:     flags,
		Action: memoryAction(&cfg, func(ctx context.Context, c *cli.Command, mem *memory.UseCase) error {
			text, err := argsText(c)
			if err != nil {
				return err
			}

			pending, err := mem.FindMemoryMatch(ctx, text)
			if err != nil {
				return err
			}
			w := c.Root().Writer
			if pending == nil {
				printResult(w, model.NewResult(model.SubtypeInfo, "No memory contains « %s ».", text))
				return nil
			}

			if !yes {
				where := string(pending.Location)
				if g := pending.Group(); g != "" {
					where += " " + g
				}
				fmt.Fprintf(w, "Delete « %s » (%s)? [y/N] ", pending.Item.Text, where)
				answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					printResult(w, model.NewResult(model.SubtypeInfo, "Cancelled, nothing was deleted."))
					return nil
				}
			}

			msg, err := mem.ConfirmDelete(ctx, pending)
			if err != nil {
				return err
			}
			printMessage(w, msg)
			return nil
		}),
	}
}

func memoryVoteCommand() *cli.Command {
	var (
		cfg  config
		down bool
	)

	flags := memoryFlags(&cfg,
		&cli.BoolFlag{
			Name:        "down",
			Usage:       "Lower the feedback instead of raising it",
			Destination: &down,
		},
	)

	return &cli.Command{
		Name:      "vote",
		Usage:     "Adjust the feedback of the first memory containing the text",
		ArgsUsage: "<text>",
		Flags:     flags,
		Action: memoryAction(&cfg, func(ctx context.Context, c *cli.Command, mem *memory.UseCase) error {
			text, err := argsText(c)
			if err != nil {
				return err
			}
			msg, err := mem.Vote(ctx, text, !down)
			if err != nil {
				return err
			}
			printMessage(c.Root().Writer, msg)
			return nil
		}),
	}
}

func memoryRulesCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "rules",
		Usage: "Show classification rules",
		Flags: memoryFlags(&cfg),
		Action: memoryAction(&cfg, func(ctx context.Context, c *cli.Command, mem *memory.UseCase) error {
			rules, err := mem.ListRules(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Root().Writer, memory.FormatRules(rules))
			return nil
		}),
	}
}

const (
	exportJSON = "json"
	exportYAML = "yaml"
)

func memoryExportCommand() *cli.Command {
	var (
		cfg    config
		format string
		output string
	)

	flags := memoryFlags(&cfg,
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Output format (json, yaml)",
			Value:       exportJSON,
			Destination: &format,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file, stdout when empty",
			Destination: &output,
		},
	)

	return &cli.Command{
		Name:  "export",
		Usage: "Dump the whole memory document",
		Flags: flags,
		Action: memoryAction(&cfg, func(ctx context.Context, c *cli.Command, mem *memory.UseCase) error {
			store, err := mem.Get(ctx)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case exportJSON:
				data, err = model.EncodeStore(store)
			case exportYAML:
				data, err = yaml.Marshal(store)
			default:
				return goerr.New("unknown export format", goerr.V("format", format))
			}
			if err != nil {
				return goerr.Wrap(err, "failed to encode memory document", goerr.V("format", format))
			}

			if output == "" {
				_, err = c.Root().Writer.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0600); err != nil {
				return goerr.Wrap(err, "failed to write export", goerr.V("path", output))
			}
			return nil
		}),
	}
}
