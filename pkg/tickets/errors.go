package tickets

import (
	"errors"
)

var (
	// ErrNotFound is returned when a referenced panel, button or ticket is
	// absent.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned on an authorization failure. Never retried.
	ErrForbidden = errors.New("forbidden")

	// ErrPanelIncomplete is returned when a panel is not configured far
	// enough for the requested operation (no buttons, or no category).
	ErrPanelIncomplete = errors.New("panel incomplete")

	// ErrNoTargetChannel is returned when a publish has no channel to post
	// to.
	ErrNoTargetChannel = errors.New("no target channel")

	// ErrLogChannelUnavailable is returned when a panel's log channel is
	// unset, gone or inaccessible. The ticket being closed stays in closing.
	ErrLogChannelUnavailable = errors.New("log channel unavailable")

	// ErrUnknownTicket is returned when a close targets a channel with no
	// matching ticket record. Reported, non-fatal.
	ErrUnknownTicket = errors.New("unknown ticket")
)

// UserMessage translates an error into the short, specific text shown to the
// interacting user. Raw transport errors never cross into user-facing text.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "That panel or button does not exist."
	case errors.Is(err, ErrForbidden):
		return "You do not have permission to do that."
	case errors.Is(err, ErrPanelIncomplete):
		return "This panel is not fully configured. Set a category and add at least one button first."
	case errors.Is(err, ErrNoTargetChannel):
		return "No channel to publish to. Provide a channel or publish the panel once with one."
	case errors.Is(err, ErrLogChannelUnavailable):
		return "The log channel for this panel is unavailable. Fix the panel's log channel and close again."
	case errors.Is(err, ErrUnknownTicket):
		return "This channel is not a registered ticket."
	default:
		return "Something went wrong. Please try again."
	}
}
