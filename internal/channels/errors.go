package channels

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/anuncios-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/anuncios-backend/pkg/errors"
)

// Channel failure reasons recorded in the ledger.
const (
	ReasonMissingCredentials = "missing_credentials"
	ReasonNoAdapter          = "no_adapter"
	ReasonTimeout            = "timeout"
	ReasonNetwork            = "network"
	ReasonRejected           = "rejected"
	ReasonInvalidResponse    = "invalid_response"
	ReasonMissingMedia       = "missing_media"
	ReasonUnknown            = "unknown"
)

// ConfigurationError reports a channel that cannot be called with the configured credentials.
func ConfigurationError(channel enums.Channel, message string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("%s: %s", channel, message)).
		WithDetails(map[string]any{"channel": string(channel), "reason": ReasonMissingCredentials})
}

// NoAdapterError reports a channel without a registered adapter.
func NoAdapterError(channel enums.Channel) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("%s: no adapter registered", channel)).
		WithDetails(map[string]any{"channel": string(channel), "reason": ReasonNoAdapter})
}

// ChannelError reports an adapter-level failure for channel. The cause text is
// part of the message so the ledger keeps the remote explanation.
func ChannelError(channel enums.Channel, reason string, cause error) *pkgerrors.Error {
	message := fmt.Sprintf("%s: %s", channel, reason)
	var err *pkgerrors.Error
	if cause != nil {
		err = pkgerrors.Wrap(pkgerrors.CodeChannel, cause, message+": "+cause.Error())
	} else {
		err = pkgerrors.New(pkgerrors.CodeChannel, message)
	}
	return err.WithDetails(map[string]any{"channel": string(channel), "reason": reason})
}

// Reason extracts the failure reason stored on a channel or configuration error.
func Reason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ReasonTimeout
		}
		return ""
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return ""
	}
	reason, _ := details["reason"].(string)
	return reason
}
