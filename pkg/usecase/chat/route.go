package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/usecase/drive"
	"github.com/alfred-assistant/alfred/pkg/utils/logging"
)

// Route runs the command interpreters in order: memory commands, then
// confirm/cancel of a pending proposal, then Drive commands. It returns nil
// when none of them recognizes utterance. A recognized command that fails
// becomes an error Result.
func (s *Session) Route(ctx context.Context, utterance string) *model.Result {
	out, err := s.memory.Handle(ctx, utterance)
	if err != nil {
		return failure(ctx, "memory command failed", err)
	}
	if result := s.fromOutcome(ctx, out); result != nil {
		return result
	}

	switch drive.Confirmation(utterance) {
	case model.StorageActionConfirm:
		result, err := s.ConfirmPending(ctx)
		if err != nil {
			return failure(ctx, "confirmation failed", err)
		}
		return result
	case model.StorageActionCancel:
		return s.CancelPending(ctx)
	}

	if s.drive == nil {
		return nil
	}

	resp, err := s.drive.Handle(ctx, utterance)
	if err != nil {
		return failure(ctx, "drive command failed", err)
	}
	if resp.Pending != nil {
		s.propose(ctx, &pendingAction{trash: resp.Pending})
	}
	if !resp.Handled() {
		return nil
	}
	return resp.Result
}

func (s *Session) fromOutcome(ctx context.Context, out model.Outcome) *model.Result {
	switch v := out.(type) {
	case *model.Message:
		return messageResult(v)

	case *model.MemoryList:
		return &model.Result{Content: RenderMemoryList(v), Subtype: model.SubtypeInfo}

	case *model.ConfirmationRequest:
		s.propose(ctx, &pendingAction{deletion: v.Pending})
		where := ""
		if g := v.Pending.Group(); g != "" {
			where = fmt.Sprintf(" (%s **%s**)", v.Pending.Location, g)
		}
		return model.NewResult(model.SubtypeWarning, "Delete « %s »%s? Answer « confirm » or « cancel ».", v.Pending.Item.Text, where)
	}

	// model.NotHandled
	return nil
}

// RenderMemoryList formats recalled memories as a markdown list
func RenderMemoryList(list *model.MemoryList) string {
	var b strings.Builder
	if list.Title != "" {
		b.WriteString("**" + list.Title + "**\n")
	}
	for _, item := range list.Items {
		if item.Timestamp != "" {
			fmt.Fprintf(&b, "- %s (%s)\n", item.Text, item.Timestamp)
		} else {
			fmt.Fprintf(&b, "- %s\n", item.Text)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func messageResult(msg *model.Message) *model.Result {
	if msg == nil {
		return nil
	}
	return &model.Result{Content: msg.Text, Subtype: msg.Subtype}
}

func failure(ctx context.Context, msg string, err error) *model.Result {
	logging.From(ctx).Error(msg, "error", err)
	return model.NewResult(model.SubtypeError, "❌ %s: %s", msg, err.Error())
}
