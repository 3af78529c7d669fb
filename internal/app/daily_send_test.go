package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"daily_fact_bot/internal/domain/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDate = "2024-03-15"

type dailySendFixture struct {
	catalog *fakeCatalog
	ledger  *fakeLedger
	subs    *fakeSubscribers
	sender  *fakeSender
	svc     *DailySendService
}

func newDailySendFixture(t *testing.T, factIDs []int64, addresses ...string) *dailySendFixture {
	t.Helper()
	f := &dailySendFixture{
		catalog: newFakeCatalog(factIDs...),
		subs:    newFakeSubscribers(addresses...),
		sender:  newFakeSender(),
	}
	f.ledger = newFakeLedger(f.catalog)
	f.svc = f.service(newTestSelector(f.catalog, f.ledger, 99))
	return f
}

func (f *dailySendFixture) service(sel FactSelector) *DailySendService {
	return NewDailySendService(sel, f.ledger, f.catalog, f.subs, f.sender,
		NewRenderer("https://facts.example.com"), testLogger(), time.Second)
}

// stubSelector returns a fixed result.
type stubSelector struct {
	selection *Selection
	err       error
	calls     int
}

func (s *stubSelector) SelectAndRecord(ctx context.Context, date string) (*Selection, error) {
	s.calls++
	return s.selection, s.err
}

func TestRunDailySend_Idempotent(t *testing.T) {
	f := newDailySendFixture(t, []int64{1, 2, 3}, "a@example.com", "b@example.com")
	ctx := context.Background()

	first, err := f.svc.RunDailySend(ctx, testDate, false)
	require.NoError(t, err)
	assert.False(t, first.AlreadySent)
	assert.NotZero(t, first.FactID)
	assert.Equal(t, 1, first.Cycle)
	assert.Equal(t, 2, first.RecipientCount)
	assert.Equal(t, 2, first.DeliverySuccessCount)

	second, err := f.svc.RunDailySend(ctx, testDate, false)
	require.NoError(t, err)
	assert.Equal(t, &DailySendOutcome{AlreadySent: true, FactID: first.FactID, Cycle: 1}, second)

	assert.Len(t, f.sender.sent, 2, "second run must not deliver")
	assert.Equal(t, 1, f.ledger.rowCount())
}

func TestRunDailySend_ForceReusesRecordedFact(t *testing.T) {
	f := newDailySendFixture(t, []int64{1, 2, 3}, "a@example.com", "b@example.com")
	ctx := context.Background()

	first, err := f.svc.RunDailySend(ctx, testDate, false)
	require.NoError(t, err)

	forced, err := f.svc.RunDailySend(ctx, testDate, true)
	require.NoError(t, err)
	assert.False(t, forced.AlreadySent)
	assert.Equal(t, first.FactID, forced.FactID)
	assert.Equal(t, first.Cycle, forced.Cycle, "forced re-send reports the recorded cycle")
	assert.Equal(t, 2, forced.DeliverySuccessCount)

	assert.Equal(t, 1, f.ledger.rowCount(), "force must not add a ledger row")
	assert.Equal(t, 1, f.ledger.recordCalls, "force must not call the selector")
	assert.Len(t, f.sender.sent, 4)
}

func TestRunDailySend_EmptyCatalog(t *testing.T) {
	f := newDailySendFixture(t, nil, "a@example.com")

	got, err := f.svc.RunDailySend(context.Background(), testDate, false)
	require.NoError(t, err)
	assert.Equal(t, &DailySendOutcome{}, got)
	assert.Empty(t, f.sender.sent)
	assert.Equal(t, 0, f.ledger.rowCount())
}

func TestRunDailySend_PartialDeliveryFailure(t *testing.T) {
	f := newDailySendFixture(t, []int64{1}, "a@example.com", "b@example.com", "c@example.com")
	f.sender.failFor["b@example.com"] = true

	got, err := f.svc.RunDailySend(context.Background(), testDate, false)
	require.NoError(t, err)
	assert.Equal(t, 3, got.RecipientCount)
	assert.Equal(t, 2, got.DeliverySuccessCount)
	assert.Equal(t, 1, got.DeliveryFailureCount)
	assert.Equal(t, []string{"a@example.com", "c@example.com"}, f.sender.sent)

	row, err := f.ledger.GetSendForDate(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.FactID)
}

func TestRunDailySend_PanickingSenderCountsAsFailure(t *testing.T) {
	f := newDailySendFixture(t, []int64{1}, "a@example.com", "b@example.com")
	f.sender.panicOn["a@example.com"] = true

	got, err := f.svc.RunDailySend(context.Background(), testDate, false)
	require.NoError(t, err)
	assert.Equal(t, 1, got.DeliverySuccessCount)
	assert.Equal(t, 1, got.DeliveryFailureCount)
}

func TestRunDailySend_RaceLostWithoutForce(t *testing.T) {
	f := newDailySendFixture(t, []int64{1, 2, 3}, "a@example.com")
	f.ledger.beforeRecord = func(date string) {
		f.ledger.beforeRecord = nil
		require.NoError(t, f.ledger.RecordSend(context.Background(), 3, date, 1))
	}

	got, err := f.svc.RunDailySend(context.Background(), testDate, false)
	require.NoError(t, err)
	assert.Equal(t, &DailySendOutcome{AlreadySent: true, FactID: 3, Cycle: 1}, got)
	assert.Empty(t, f.sender.sent, "the run that lost the race must not deliver")
	assert.Equal(t, 1, f.ledger.rowCount())
}

func TestRunDailySend_RaceLostWithForceDeliversWinnersFact(t *testing.T) {
	f := newDailySendFixture(t, []int64{1, 2, 3}, "a@example.com")
	f.ledger.beforeRecord = func(date string) {
		f.ledger.beforeRecord = nil
		require.NoError(t, f.ledger.RecordSend(context.Background(), 2, date, 1))
	}

	got, err := f.svc.RunDailySend(context.Background(), testDate, true)
	require.NoError(t, err)
	assert.False(t, got.AlreadySent)
	assert.Equal(t, int64(2), got.FactID)
	assert.Equal(t, 1, got.DeliverySuccessCount)
	assert.Equal(t, 1, f.ledger.rowCount())
}

func TestRunDailySend_DuplicateButRowMissingIsFatal(t *testing.T) {
	f := newDailySendFixture(t, []int64{1}, "a@example.com")
	svc := f.service(&stubSelector{err: ledger.ErrDuplicateDate})

	got, err := svc.RunDailySend(context.Background(), testDate, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrSendNotFound)
	assert.Nil(t, got)
}

func TestRunDailySend_MissingFactIsDegradedNotFatal(t *testing.T) {
	f := newDailySendFixture(t, []int64{1}, "a@example.com")
	require.NoError(t, f.ledger.RecordSend(context.Background(), 77, testDate, 4))

	got, err := f.svc.RunDailySend(context.Background(), testDate, true)
	require.NoError(t, err)
	assert.Equal(t, &DailySendOutcome{FactID: 77, Cycle: 4, FactMissing: true}, got)
	assert.Empty(t, f.sender.sent)
}

func TestRunDailySend_StorageErrorIsFatal(t *testing.T) {
	f := newDailySendFixture(t, []int64{1}, "a@example.com")
	f.ledger.lookupErr = errors.New("disk I/O error")

	_, err := f.svc.RunDailySend(context.Background(), testDate, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestRunDailySend_SelectorErrorIsFatal(t *testing.T) {
	f := newDailySendFixture(t, []int64{1}, "a@example.com")
	svc := f.service(&stubSelector{err: errors.New("database is locked")})

	_, err := svc.RunDailySend(context.Background(), testDate, false)
	require.Error(t, err)
	assert.Empty(t, f.sender.sent)
}

func TestRunDailySend_InvalidDate(t *testing.T) {
	f := newDailySendFixture(t, []int64{1}, "a@example.com")

	_, err := f.svc.RunDailySend(context.Background(), "15/03/2024", false)
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Equal(t, 0, f.ledger.rowCount())
}

func TestRunDailySend_NoSubscribersStillRecords(t *testing.T) {
	f := newDailySendFixture(t, []int64{1})

	got, err := f.svc.RunDailySend(context.Background(), testDate, false)
	require.NoError(t, err)
	assert.Equal(t, &DailySendOutcome{FactID: 1, Cycle: 1}, got)
	assert.Equal(t, 1, f.ledger.rowCount())
}

func TestRunDailySend_PerRecipientUnsubscribeLink(t *testing.T) {
	f := newDailySendFixture(t, []int64{1}, "a@example.com", "b@example.com")

	_, err := f.svc.RunDailySend(context.Background(), testDate, false)
	require.NoError(t, err)
	require.Len(t, f.sender.msgs, 2)
	assert.Contains(t, f.sender.msgs[0].Text, "token=token-a%40example.com")
	assert.Contains(t, f.sender.msgs[1].Text, "token=token-b%40example.com")
}

func TestDailySendOutcome_Summary(t *testing.T) {
	tests := []struct {
		name    string
		outcome DailySendOutcome
		want    string
	}{
		{"already sent", DailySendOutcome{AlreadySent: true, FactID: 4, Cycle: 2}, "fact 4 was already sent for this date (cycle 2)"},
		{"empty", DailySendOutcome{}, "no fact sent: the catalog is empty"},
		{"missing", DailySendOutcome{FactID: 9, Cycle: 1, FactMissing: true}, "fact 9 is recorded but missing from the catalog, nothing delivered"},
		{"sent", DailySendOutcome{FactID: 3, Cycle: 1, RecipientCount: 3, DeliverySuccessCount: 2, DeliveryFailureCount: 1}, "fact 3 (cycle 1) delivered to 2 of 3 subscribers, 1 failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.Summary())
		})
	}
}
