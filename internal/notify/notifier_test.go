package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshenfield/cleansweep/internal/domain"
)

type fakeSender struct {
	name string
	err  error

	mu       sync.Mutex
	titles   []string
	messages []string
}

func (f *fakeSender) Send(_ context.Context, title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
	f.messages = append(f.messages, message)
	return f.err
}

func (f *fakeSender) Name() string { return f.name }

func testReport() domain.SweepReport {
	return domain.SweepReport{
		ID:               "b7f9c1e0-0000-0000-0000-000000000000",
		Ticker:           "PLU",
		Token:            common.HexToAddress("0xd8912c10681d8b21fd3742244f44658dba12264e"),
		Revenue:          decimal.RequireFromString("0.042"),
		Quantity:         decimal.RequireFromString("10"),
		BuyPrice:         decimal.RequireFromString("0.05"),
		SellPrice:        decimal.RequireFromString("0.045"),
		RiskRevenueRatio: decimal.RequireFromString("10.71"),
		DetectedAt:       time.Now().UTC(),
	}
}

func TestReportFansOutToAllSenders(t *testing.T) {
	a := &fakeSender{name: "a"}
	b := &fakeSender{name: "b"}
	n := NewNotifier([]Sender{a, b}, slog.Default())

	require.NoError(t, n.Report(context.Background(), testReport()))

	require.Len(t, a.titles, 1)
	require.Len(t, b.titles, 1)
	assert.Equal(t, "Sweep found: PLU", a.titles[0])
	assert.Contains(t, a.messages[0], "0.042 ETH")
	assert.Contains(t, a.messages[0], "risk/revenue: 10.71")
}

func TestReportOneFailureDoesNotBlockOthers(t *testing.T) {
	bad := &fakeSender{name: "bad", err: errors.New("webhook 500")}
	good := &fakeSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, slog.Default())

	err := n.Report(context.Background(), testReport())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Len(t, good.titles, 1)
}

func TestReportNoSendersIsNoOp(t *testing.T) {
	n := NewNotifier(nil, slog.Default())
	assert.NoError(t, n.Report(context.Background(), testReport()))
}
