package cli

import (
	"fmt"
	"io"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/usecase/memory"
	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func printResult(w io.Writer, result *model.Result) {
	if result == nil {
		return
	}

	content := result.Content
	switch result.Subtype {
	case model.SubtypeSuccess:
		content = green(content)
	case model.SubtypeInfo:
		content = cyan(content)
	case model.SubtypeWarning:
		content = yellow(content)
	case model.SubtypeError:
		content = red(content)
	}
	fmt.Fprintf(w, "%s\n", content)
}

func printMessage(w io.Writer, msg *model.Message) {
	if msg == nil {
		return
	}
	printResult(w, &model.Result{Content: msg.Text, Subtype: msg.Subtype})
}

func printItems(w io.Writer, items []*model.MemoryItem) {
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\n", gray(it.Timestamp), it.Text)
	}
}

func printRanked(w io.Writer, hits []*memory.RankedMemory) {
	for _, h := range hits {
		where := string(h.Location)
		if h.Group != "" {
			where += ":" + h.Group
		}
		fmt.Fprintf(w, "%.4f\t%s\t%s\n", h.Score, gray(where), h.Text)
	}
}
