package surface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/pkg/staffmail"
)

// restCode returns the Discord error code and HTTP status of a REST error.
func restCode(err error) (code int, status int, ok bool) {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return 0, 0, false
	}
	if restErr.Message != nil {
		code = restErr.Message.Code
	}
	if restErr.Response != nil {
		status = restErr.Response.StatusCode
	}
	return code, status, true
}

// userError marks errors that mean the user cannot be reached.
func userError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, staffmail.ErrDeliveryFailed) {
		return err
	}

	code, status, ok := restCode(err)
	if ok && (code == discordgo.ErrCodeCannotSendMessagesToThisUser ||
		code == discordgo.ErrCodeUnknownUser ||
		status == http.StatusForbidden) {
		return fmt.Errorf("%w: %w", staffmail.ErrDeliveryFailed, err)
	}
	return err
}

// staffError marks errors that mean the staff channel is gone.
func staffError(err error) error {
	if err == nil {
		return nil
	}

	code, status, ok := restCode(err)
	if ok && (code == discordgo.ErrCodeUnknownChannel || status == http.StatusNotFound) {
		return fmt.Errorf("%w: %w", staffmail.ErrUnknownStaffChannel, err)
	}
	return err
}

// isUnknown reports whether the error says that the message or channel does not exist.
func isUnknown(err error) bool {
	code, status, ok := restCode(err)
	return ok && (code == discordgo.ErrCodeUnknownMessage ||
		code == discordgo.ErrCodeUnknownChannel ||
		status == http.StatusNotFound)
}

// sendWithin runs send and gives up once the timeout or the context is done. A send that is given up on is a failed
// delivery; if it still lands afterwards the message is handed to late so it can be taken back.
func sendWithin(
	ctx context.Context,
	timeout time.Duration,
	send func() (*discordgo.Message, error),
	late func(*discordgo.Message),
) (*discordgo.Message, error) {
	type result struct {
		msg *discordgo.Message
		err error
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		msg, err := send()
		done <- result{msg: msg, err: err}
	}()

	select {
	case res := <-done:
		return res.msg, res.err
	case <-ctx.Done():
		go func() {
			if res := <-done; res.err == nil && res.msg != nil && late != nil {
				late(res.msg)
			}
		}()
		return nil, fmt.Errorf("%w: %w", staffmail.ErrDeliveryFailed, ctx.Err())
	}
}
