package mailer

import (
	"context"
	"errors"
	"net"
	"net/textproto"

	"github.com/wneessen/go-mail"
)

// Class buckets a delivery failure for the retry policy. The original
// operator runbook distinguishes authentication failures (abort the run,
// the account is misconfigured or locked), connection failures and
// transient provider rejections (retry with backoff), and permanent
// rejections (skip the voter); anything unrecognized is retried once
// through the same budget rather than silently dropped.
type Class int

const (
	ClassAuth Class = iota
	ClassConnect
	ClassTransport
	ClassPermanent
	ClassUnknown
)

func (c Class) String() string {
	switch c {
	case ClassAuth:
		return "auth"
	case ClassConnect:
		return "connect"
	case ClassTransport:
		return "transport"
	case ClassPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Retryable reports whether the retry policy may attempt the send again.
func (c Class) Retryable() bool {
	switch c {
	case ClassConnect, ClassTransport, ClassUnknown:
		return true
	default:
		return false
	}
}

// Classify maps a transport error onto a Class. SMTP reply codes are read
// from the typed textproto error rather than matched as strings; 4xx codes
// are transient by definition, 5xx permanent, with the authentication codes
// split out because retrying a bad password only locks the account faster.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch {
		case tpErr.Code == 530 || tpErr.Code == 534 || tpErr.Code == 535 || tpErr.Code == 538:
			return ClassAuth
		case tpErr.Code/100 == 4:
			return ClassTransport
		case tpErr.Code/100 == 5:
			return ClassPermanent
		}
	}

	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		if sendErr.IsTemp() {
			return ClassTransport
		}
		return ClassPermanent
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassConnect
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassConnect
	}

	return ClassUnknown
}
