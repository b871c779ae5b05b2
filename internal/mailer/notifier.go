package mailer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/votekeeper/internal/common"
	"github.com/dmitrijs2005/votekeeper/internal/config"
	"github.com/dmitrijs2005/votekeeper/internal/logging"
	"github.com/dmitrijs2005/votekeeper/internal/models"
)

// Notifier renders a voter's credential message and delivers it.
//
// In simulation mode nothing touches the network: the fully rendered message
// is echoed to the operator writer and reported as delivered, which lets the
// whole workflow around it run end to end. In production mode delivery goes
// through the Sender with bounded exponential-backoff retries on retryable
// failure classes only.
type Notifier struct {
	renderer   *Renderer
	sender     Sender
	production bool
	maxRetries int
	retryBase  time.Duration
	echo       io.Writer
	log        logging.Logger
}

func NewNotifier(cfg *config.Config, renderer *Renderer, sender Sender, echo io.Writer, log logging.Logger) *Notifier {
	return &Notifier{
		renderer:   renderer,
		sender:     sender,
		production: cfg.Production,
		maxRetries: cfg.MaxRetries,
		retryBase:  cfg.RetryBase,
		echo:       echo,
		log:        log,
	}
}

// Deliver renders and sends the credential message for one voter. The bool
// reports whether the message is considered delivered; on false the error
// carries the failure class (common.ErrAuthFailed aborts the whole run,
// common.ErrDeliveryFailed skips the voter).
func (n *Notifier) Deliver(ctx context.Context, voter models.Voter, cred models.Credential) (bool, error) {
	msg, err := n.renderer.Render(voter, cred)
	if err != nil {
		return false, fmt.Errorf("%w: %w", common.ErrDeliveryFailed, err)
	}

	if !n.production {
		n.echoMessage(voter, msg)
		return true, nil
	}

	backoff := retry.WithMaxRetries(uint64(n.maxRetries), retry.NewExponential(n.retryBase))
	var class Class
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		sendErr := n.sender.Send(ctx, voter.Email, msg)
		if sendErr == nil {
			return nil
		}
		class = Classify(sendErr)
		if class.Retryable() {
			n.log.Warn(ctx, "send failed, will retry",
				"email", voter.Email, "class", class.String(), "error", sendErr)
			return retry.RetryableError(sendErr)
		}
		return sendErr
	})
	if err != nil {
		if class == ClassAuth {
			return false, fmt.Errorf("%w: %w", common.ErrAuthFailed, err)
		}
		return false, fmt.Errorf("%w (%s): %w", common.ErrDeliveryFailed, class, err)
	}
	return true, nil
}

// echoMessage prints the rendered message the way a real send would deliver
// it, so a simulation run can be reviewed line by line.
func (n *Notifier) echoMessage(voter models.Voter, msg models.Message) {
	var b strings.Builder
	b.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&b, "[SIMULATION] To: %s <%s>\n", voter.Name, voter.Email)
	fmt.Fprintf(&b, "[SIMULATION] Subject: %s\n", msg.Subject)
	b.WriteString(strings.Repeat("-", 60) + "\n")
	b.WriteString(msg.Text)
	if !strings.HasSuffix(msg.Text, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprint(n.echo, b.String())
}
