// Package notify delivers sweep reports to operators over chat webhooks. A
// report is fanned out to every configured sender; one channel failing does
// not stop delivery to the rest.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mshenfield/cleansweep/internal/domain"
)

// Sender is a single notification channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender.
	Name() string
}

// Notifier fans sweep reports out to its senders.
type Notifier struct {
	senders []Sender
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders. An empty
// sender list is valid; Report becomes a no-op.
func NewNotifier(senders []Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders: senders,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Report renders the sweep report and delivers it to every sender
// concurrently. Errors from individual senders are collected; a single
// failure does not block the remaining channels.
func (n *Notifier) Report(ctx context.Context, report domain.SweepReport) error {
	if len(n.senders) == 0 {
		return nil
	}

	title := fmt.Sprintf("Sweep found: %s", report.Ticker)
	message := formatReport(report)

	var (
		mu   sync.Mutex
		errs []string
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range n.senders {
		g.Go(func() error {
			if err := s.Send(ctx, title, message); err != nil {
				n.logger.ErrorContext(ctx, "sender failed",
					slog.String("sender", s.Name()),
					slog.String("error", err.Error()),
				)
				mu.Lock()
				errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
				mu.Unlock()
				return nil
			}
			n.logger.DebugContext(ctx, "report sent",
				slog.String("sender", s.Name()),
				slog.String("ticker", report.Ticker),
			)
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

func formatReport(r domain.SweepReport) string {
	return fmt.Sprintf(
		"token: %s\nrevenue: %s ETH\nquantity: %s\nbuy price: %s\nsell price: %s\nrisk/revenue: %s",
		r.Token.Hex(),
		r.Revenue.String(),
		r.Quantity.String(),
		r.BuyPrice.String(),
		r.SellPrice.String(),
		r.RiskRevenueRatio.StringFixed(2),
	)
}
