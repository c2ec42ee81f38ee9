package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alfred-assistant/alfred/pkg/usecase/chat"
	"github.com/alfred-assistant/alfred/pkg/utils/logging"
	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg     config
		history string
	)

	home, _ := os.UserHomeDir()
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "history-file",
			Usage:       "Readline history file",
			Value:       filepath.Join(home, ".alfred_history"),
			Sources:     cli.EnvVars("ALFRED_HISTORY_FILE"),
			Destination: &history,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, backendFlags(&cfg)...)
	flags = append(flags, driveFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Talk with the assistant",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.withLogger(ctx)
			if err != nil {
				return err
			}

			mem, err := cfg.newMemory(ctx)
			if err != nil {
				return err
			}
			gemini, err := cfg.optionalGemini(ctx)
			if err != nil {
				return err
			}
			driveUC, err := cfg.newDriveUseCase(ctx, gemini)
			if err != nil {
				return err
			}

			session := chat.New(chat.NewInput{
				Memory: mem,
				Drive:  driveUC,
				Gemini: gemini,
			})

			rl, err := readline.NewEx(&readline.Config{
				Prompt:            "> ",
				HistoryFile:       history,
				InterruptPrompt:   "^C",
				EOFPrompt:         "exit",
				HistorySearchFold: true,
				Stdin:             readline.NewCancelableStdin(os.Stdin),
				Stdout:            c.Root().Writer,
				Stderr:            os.Stderr,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			w := c.Root().Writer
			fmt.Fprintf(w, "Alfred is listening. Type 'exit' to quit.\n")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if line == "" {
						break
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				message := strings.TrimSpace(line)
				if message == "exit" || message == "quit" {
					break
				}
				if message == "" {
					continue
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
				sp.Suffix = " thinking..."
				sp.Start()
				result, err := session.Send(ctx, message)
				sp.Stop()

				if err != nil {
					logging.From(ctx).Error("failed to answer", "error", err)
					fmt.Fprintf(w, "%s\n", red("❌ "+err.Error()))
					continue
				}
				printResult(w, result)
			}

			store, err := mem.Get(ctx)
			if err != nil {
				return err
			}
			if err := mem.Save(ctx, store); err != nil {
				return goerr.Wrap(err, "failed to save memories on exit")
			}
			fmt.Fprintf(w, "Bye.\n")
			return nil
		},
	}
}
