package chat

import (
	"context"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/utils/logging"
)

// State is the confirmation state of the destructive action of a session
type State int

const (
	StateIdle State = iota
	StateProposed
	StateApplied
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateProposed:
		return "proposed"
	case StateApplied:
		return "applied"
	case StateCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// pendingAction is either a memory deletion or a Drive trash, never both
type pendingAction struct {
	id       model.ConfirmationID
	deletion *model.PendingDeletion
	trash    *model.PendingTrash
}

// State returns the confirmation state
func (s *Session) State() State {
	return s.state
}

// PendingID returns the ID of the proposal waiting for confirmation, or ""
func (s *Session) PendingID() model.ConfirmationID {
	if s.pending == nil {
		return ""
	}
	return s.pending.id
}

// propose stores a new proposal. A proposal already waiting is replaced.
func (s *Session) propose(ctx context.Context, p *pendingAction) {
	if s.pending != nil {
		logging.From(ctx).Info("pending action replaced", "previous", s.pending.id)
	}
	p.id = model.NewConfirmationID()
	s.pending = p
	s.state = StateProposed
}

// ConfirmPending applies the proposal waiting for confirmation
func (s *Session) ConfirmPending(ctx context.Context) (*model.Result, error) {
	if s.pending == nil {
		return model.NewResult(model.SubtypeInfo, "Nothing to confirm."), nil
	}
	p := s.pending

	var result *model.Result
	switch {
	case p.deletion != nil:
		msg, err := s.memory.ConfirmDelete(ctx, p.deletion)
		if err != nil {
			return nil, err
		}
		result = messageResult(msg)

	case p.trash != nil:
		if s.drive == nil {
			return model.NewResult(model.SubtypeWarning, "Drive is not configured."), nil
		}
		r, err := s.drive.ConfirmTrash(ctx, p.trash)
		if err != nil {
			return nil, err
		}
		result = r
	}

	s.pending = nil
	s.state = StateApplied
	return result, nil
}

// CancelPending discards the proposal waiting for confirmation
func (s *Session) CancelPending(ctx context.Context) *model.Result {
	if s.pending == nil {
		return model.NewResult(model.SubtypeInfo, "Nothing to cancel.")
	}

	logging.From(ctx).Info("pending action cancelled", "id", s.pending.id)
	s.pending = nil
	s.state = StateCancelled
	return model.NewResult(model.SubtypeInfo, "Cancelled, nothing was deleted.")
}
