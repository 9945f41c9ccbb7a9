package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/visa-watch/internal/domain/account"
	"github.com/example/visa-watch/internal/domain/portal"
	"github.com/example/visa-watch/internal/internaltypes"
	"github.com/example/visa-watch/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newCheck(b portal.Browser) CheckAvailability {
	return CheckAvailability{
		Browser:          b,
		Credentials:      account.Credentials{Email: "me@example.com", Password: "pw", Source: "env"},
		LoginURL:         "https://portal.test/users/sign_in",
		Language:         "en",
		MaxCalendarPages: 24,
		CalendarWait:     time.Millisecond,
		StepTimeout:      time.Second,
	}
}

func singlePage(p *testutil.FakePage) *testutil.FakeBrowser {
	return &testutil.FakeBrowser{NewPage: func(int) *testutil.FakePage { return p }}
}

func TestExecuteWalksTheFlow(t *testing.T) {
	page := &testutil.FakePage{Calendar: testutil.Calendar{
		EmptyPages: 2,
		Cell:       portal.CalendarCell{Year: 2025, Month: 4, Day: 9},
	}}
	b := singlePage(page)

	res, err := newCheck(b).Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025-04-09", res.Candidate.String())
	require.Equal(t, 2, res.PagesAdvanced)

	require.Equal(t, []string{"https://portal.test/users/sign_in"}, page.Visited)
	require.Equal(t, map[string]string{"#user_email": "me@example.com", "#user_password": "pw"}, page.Typed)
	require.Equal(t, []string{"Reschedule Appointment"}, page.Links)

	wantClicks := []string{
		"#policy_confirmed",
		`input[type="submit"]`,
		"ul.actions > li > a",
		".fa-calendar-minus",
		"#appointments_consulate_appointment_date",
		"a.ui-datepicker-next",
		"a.ui-datepicker-next",
	}
	if diff := cmp.Diff(wantClicks, page.Clicks); diff != "" {
		t.Fatalf("clicks mismatch (-want +got):\n%s", diff)
	}
	require.True(t, page.Closed)
}

func TestExecuteMultipleApplicantsAndLocale(t *testing.T) {
	page := &testutil.FakePage{Calendar: testutil.Calendar{Cell: portal.CalendarCell{Year: 2025, Month: 1, Day: 2}}}
	u := newCheck(singlePage(page))
	u.MultipleApplicants = true
	u.Language = "es"

	_, err := u.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Reprogramar cita"}, page.Links)

	// the extra confirmation sits between the reschedule link and the date picker
	require.Equal(t, []string{
		"#policy_confirmed",
		`input[type="submit"]`,
		"ul.actions > li > a",
		".fa-calendar-minus",
		`input[type="submit"]`,
		"#appointments_consulate_appointment_date",
	}, page.Clicks)
}

func TestExecuteClosesPageOnFailure(t *testing.T) {
	page := &testutil.FakePage{Fail: map[string]error{
		".fa-calendar-minus": errors.New("node not found: " + internaltypes.ErrNotFound.Error()),
	}}
	_, err := newCheck(singlePage(page)).Execute(context.Background())
	require.Error(t, err)

	var ae *internaltypes.AttemptError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, "reschedule screen", ae.Step)
	require.True(t, page.Closed)
}

func TestExecuteClassifiesLookupFailures(t *testing.T) {
	page := &testutil.FakePage{Fail: map[string]error{
		"Reschedule Appointment": internaltypes.ErrNotFound,
	}}
	_, err := newCheck(singlePage(page)).Execute(context.Background())
	require.Equal(t, internaltypes.KindLookup, internaltypes.KindOf(err))
}

func TestExecuteNavigationFailure(t *testing.T) {
	page := &testutil.FakePage{Fail: map[string]error{
		"https://portal.test/users/sign_in": errors.New("net::ERR_NAME_NOT_RESOLVED"),
	}}
	_, err := newCheck(singlePage(page)).Execute(context.Background())
	require.Equal(t, internaltypes.KindNavigation, internaltypes.KindOf(err))
	require.ErrorContains(t, err, "navigate")
	require.True(t, page.Closed)
	require.Empty(t, page.Clicks)
}

func TestExecuteOpenFailure(t *testing.T) {
	b := &testutil.FakeBrowser{OpenErr: errors.New("chrome not found")}
	_, err := newCheck(b).Execute(context.Background())
	require.ErrorContains(t, err, "open browser")
	require.ErrorContains(t, err, "chrome not found")
}

func TestExecuteInvalidCellIsDecisionError(t *testing.T) {
	page := &testutil.FakePage{Calendar: testutil.Calendar{Cell: portal.CalendarCell{Year: 2025, Month: 2, Day: 30}}}
	_, err := newCheck(singlePage(page)).Execute(context.Background())
	require.Equal(t, internaltypes.KindDecision, internaltypes.KindOf(err))
	require.True(t, page.Closed)
}

func TestFindEarliestDatePagesForwardExactlyK(t *testing.T) {
	for _, k := range []int{0, 1, 5, 24} {
		page := &testutil.FakePage{Calendar: testutil.Calendar{
			EmptyPages: k,
			Cell:       portal.CalendarCell{Year: 2026, Month: 12, Day: 31},
		}}
		d, advanced, err := FindEarliestDate(context.Background(), page, ScanOptions{MaxPages: 24, Wait: time.Millisecond})
		require.NoError(t, err, "k=%d", k)
		require.Equal(t, k, advanced)
		require.Equal(t, k, page.NextClicks)
		require.Equal(t, "2026-12-31", d.String())
	}
}

func TestFindEarliestDateIsBounded(t *testing.T) {
	page := &testutil.FakePage{Calendar: testutil.Calendar{EmptyPages: 1000}}
	_, advanced, err := FindEarliestDate(context.Background(), page, ScanOptions{MaxPages: 3, Wait: time.Millisecond})
	require.ErrorIs(t, err, ErrCalendarExhausted)
	require.Equal(t, internaltypes.KindCalendarExhausted, internaltypes.KindOf(err))
	require.Equal(t, 3, advanced)
	require.Equal(t, 3, page.NextClicks)
}

func TestFindEarliestDateStopsOnOtherErrors(t *testing.T) {
	boom := errors.New("target closed")
	page := &testutil.FakePage{Fail: map[string]error{"a.ui-state-default": boom}}
	_, advanced, err := FindEarliestDate(context.Background(), page, ScanOptions{MaxPages: 3})
	require.ErrorIs(t, err, boom)
	require.Zero(t, advanced)
}

func TestFindEarliestDateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	page := &testutil.FakePage{Calendar: testutil.Calendar{EmptyPages: 5}}
	_, _, err := FindEarliestDate(ctx, page, ScanOptions{MaxPages: 10})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, page.NextClicks)
}

func TestPause(t *testing.T) {
	require.NoError(t, pause(context.Background(), 0))
	require.NoError(t, pause(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, pause(ctx, time.Hour), context.Canceled)
}
