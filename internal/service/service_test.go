package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/booking"
	"github.com/iliyamo/movie-ticket-booking/internal/logging"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.TicketBookedEvent
	err    error
}

func (p *recordingPublisher) PublishTicketBooked(_ context.Context, ev queue.TicketBookedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type countingGateway struct {
	*SimulatedGateway
	mu      sync.Mutex
	charges int
	refunds int
}

func (g *countingGateway) Charge(ctx context.Context, d PaymentDetails, amount booking.Money) (PaymentReceipt, error) {
	r, err := g.SimulatedGateway.Charge(ctx, d, amount)
	if err == nil {
		g.mu.Lock()
		g.charges++
		g.mu.Unlock()
	}
	return r, err
}

func (g *countingGateway) Refund(ctx context.Context, r PaymentReceipt) error {
	g.mu.Lock()
	g.refunds++
	g.mu.Unlock()
	return g.SimulatedGateway.Refund(ctx, r)
}

type fixture struct {
	db        *sql.DB
	cat       testutil.Catalog
	svc       *BookingService
	gateway   *countingGateway
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db)
	gw := &countingGateway{SimulatedGateway: NewSimulatedGateway(0)}
	pub := &recordingPublisher{}
	svc := NewBookingService(
		repository.NewScheduleRepo(db),
		repository.NewScreenRepo(db),
		repository.NewMovieRepo(db),
		repository.NewTicketRepo(db),
		gw, pub, logging.Discard(), time.UTC,
	)
	return &fixture{db: db, cat: cat, svc: svc, gateway: gw, publisher: pub}
}

var upi = PaymentDetails{Method: PaymentUPI, UPIID: "alice@okbank"}

func (f *fixture) selection(t *testing.T, gold, standard []int) *booking.Selection {
	t.Helper()
	sel, err := f.svc.OpenSelection(context.Background(), f.cat.ShowingIDs[0], len(gold)+len(standard))
	require.NoError(t, err)
	for _, n := range gold {
		_, err := sel.Toggle(booking.Gold, n)
		require.NoError(t, err)
	}
	for _, n := range standard {
		_, err := sel.Toggle(booking.Standard, n)
		require.NoError(t, err)
	}
	return sel
}

func countTickets(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tickets`).Scan(&n))
	return n
}

func TestBookingService_LoadShowing(t *testing.T) {
	f := newFixture(t)
	showing, layout, err := f.svc.LoadShowing(context.Background(), f.cat.ShowingIDs[0])
	require.NoError(t, err)
	assert.Equal(t, f.cat.MovieID, showing.MovieID)
	assert.Equal(t, 30, layout.Gold)
	assert.Equal(t, 70, layout.Standard)

	_, _, err = f.svc.LoadShowing(context.Background(), 9999)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestBookingService_BookHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.Book(ctx, BookingRequest{
		CustomerID: f.cat.CustomerID,
		Selection:  f.selection(t, []int{1, 2}, []int{5}),
		Payment:    upi,
	})
	require.NoError(t, err)
	assert.Regexp(t, `^TKT-\d+-\d{6}$`, ticket.ID)
	assert.Equal(t, []int{1, 2}, ticket.GoldSeats)
	assert.Equal(t, []int{5}, ticket.StandardSeats)
	assert.Equal(t, int64(502_00), ticket.TotalPaise)
	assert.Equal(t, "Interstellar", ticket.MovieTitle)
	assert.Equal(t, "UPI", ticket.PaymentMethod)
	require.NotNil(t, ticket.PaymentRef)

	showing, _, err := f.svc.LoadShowing(ctx, f.cat.ShowingIDs[0])
	require.NoError(t, err)
	booked, err := f.svc.BookedSeats(ctx, showing)
	require.NoError(t, err)
	assert.Equal(t, booking.NewSeatSet([]int{1, 2}, []int{5}), booked)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, ticket.ID, f.publisher.events[0].TicketID)
	assert.Equal(t, 0, f.gateway.refunds)
}

func TestBookingService_PublishFailureKeepsTicket(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	_, err := f.svc.Book(context.Background(), BookingRequest{
		CustomerID: f.cat.CustomerID, Selection: f.selection(t, []int{3}, nil), Payment: upi,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countTickets(t, f.db))
}

func TestBookingService_IncompleteSelectionPersistsNothing(t *testing.T) {
	f := newFixture(t)
	sel, err := f.svc.OpenSelection(context.Background(), f.cat.ShowingIDs[0], 3)
	require.NoError(t, err)
	_, err = sel.Toggle(booking.Gold, 1)
	require.NoError(t, err)

	_, err = f.svc.Book(context.Background(), BookingRequest{CustomerID: f.cat.CustomerID, Selection: sel, Payment: upi})
	assert.ErrorIs(t, err, booking.ErrIncompleteSelection)
	assert.Equal(t, 0, countTickets(t, f.db))
	assert.Equal(t, 0, f.gateway.charges)
}

func TestBookingService_InvalidPaymentPersistsNothing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Book(context.Background(), BookingRequest{
		CustomerID: f.cat.CustomerID,
		Selection:  f.selection(t, []int{1}, nil),
		Payment:    PaymentDetails{Method: PaymentUPI, UPIID: "nope"},
	})
	assert.ErrorIs(t, err, ErrInvalidPayment)
	assert.Equal(t, 0, countTickets(t, f.db))
}

func TestBookingService_StaleSelectionConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.selection(t, []int{7}, nil)
	second := f.selection(t, []int{7, 8}, nil)

	_, err := f.svc.Book(ctx, BookingRequest{CustomerID: f.cat.CustomerID, Selection: first, Payment: upi})
	require.NoError(t, err)

	_, err = f.svc.Book(ctx, BookingRequest{CustomerID: f.cat.AdminID, Selection: second, Payment: upi})
	require.ErrorIs(t, err, booking.ErrSeatConflict)
	var conflict *booking.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []int{7}, conflict.Seats.Gold)
	assert.Equal(t, 1, countTickets(t, f.db))

	lost, err := f.svc.RefreshSelection(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, lost.Gold)
	assert.Equal(t, []int{8}, second.Picks.Gold)
	assert.False(t, second.Complete())
}

func TestBookingService_ConcurrentDoubleBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sels := []*booking.Selection{f.selection(t, []int{10}, nil), f.selection(t, []int{10}, nil)}

	var wg sync.WaitGroup
	errs := make([]error, len(sels))
	for i, sel := range sels {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Book(ctx, BookingRequest{CustomerID: f.cat.CustomerID, Selection: sel, Payment: upi})
		}()
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, booking.ErrSeatConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, 1, countTickets(t, f.db))
	assert.Equal(t, f.gateway.charges-1, f.gateway.refunds)
}

func TestBookingService_RetriesTicketIDCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := []string{"TKT-1-1111", "TKT-1-1111", "TKT-1-2222"}
	f.svc.newTicketID = func(uint64) string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, err := f.svc.Book(ctx, BookingRequest{CustomerID: f.cat.CustomerID, Selection: f.selection(t, []int{1}, nil), Payment: upi})
	require.NoError(t, err)
	assert.Equal(t, "TKT-1-1111", first.ID)

	second, err := f.svc.Book(ctx, BookingRequest{CustomerID: f.cat.CustomerID, Selection: f.selection(t, []int{2}, nil), Payment: upi})
	require.NoError(t, err)
	assert.Equal(t, "TKT-1-2222", second.ID)
}

func TestBookingService_TicketIDExhaustion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.newTicketID = func(uint64) string { return "TKT-1-9999" }

	_, err := f.svc.Book(ctx, BookingRequest{CustomerID: f.cat.CustomerID, Selection: f.selection(t, []int{1}, nil), Payment: upi})
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, BookingRequest{CustomerID: f.cat.CustomerID, Selection: f.selection(t, []int{2}, nil), Payment: upi})
	assert.ErrorIs(t, err, booking.ErrBookingFailed)
	assert.Equal(t, 1, f.gateway.refunds)
}

func TestSelectionService_Flow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewSelectionService(f.svc, NewMemorySelectionStore(time.Hour))
	uid := f.cat.CustomerID

	_, err := svc.Get(ctx, uid)
	assert.ErrorIs(t, err, ErrSelectionNotFound)

	sel, err := svc.Open(ctx, uid, f.cat.ShowingIDs[0], 1)
	require.NoError(t, err)
	assert.Equal(t, booking.StateEmpty, sel.State())

	res, _, err := svc.Toggle(ctx, uid, booking.Gold, 4)
	require.NoError(t, err)
	assert.Equal(t, booking.ToggleAdded, res)

	_, sel, err = svc.Toggle(ctx, uid, booking.Standard, 1)
	assert.ErrorIs(t, err, booking.ErrSelectionFull)
	assert.Equal(t, 1, sel.Total())

	sel, err = svc.SetCount(ctx, uid, 2)
	require.NoError(t, err)
	assert.Equal(t, booking.StatePartial, sel.State())
	_, _, err = svc.Toggle(ctx, uid, booking.Standard, 1)
	require.NoError(t, err)

	_, err = svc.SetCount(ctx, uid, 11)
	assert.ErrorIs(t, err, booking.ErrInvalidSeatCount)

	ticket, _, err := svc.Checkout(ctx, uid, upi)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, ticket.GoldSeats)
	assert.Equal(t, []int{1}, ticket.StandardSeats)

	_, err = svc.Get(ctx, uid)
	assert.ErrorIs(t, err, ErrSelectionNotFound)
}

func TestSelectionService_CheckoutConflictRefreshesSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewSelectionService(f.svc, NewMemorySelectionStore(time.Hour))
	alice, admin := f.cat.CustomerID, f.cat.AdminID

	for _, uid := range []uint64{alice, admin} {
		_, err := svc.Open(ctx, uid, f.cat.ShowingIDs[0], 1)
		require.NoError(t, err)
		_, _, err = svc.Toggle(ctx, uid, booking.Standard, 20)
		require.NoError(t, err)
	}
	_, _, err := svc.Checkout(ctx, alice, upi)
	require.NoError(t, err)

	_, sel, err := svc.Checkout(ctx, admin, upi)
	require.ErrorIs(t, err, booking.ErrSeatConflict)
	assert.Equal(t, 0, sel.Total())
	assert.True(t, sel.Booked.Has(booking.Standard, 20))

	stored, err := svc.Get(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Total())

	res, _, err := svc.Toggle(ctx, admin, booking.Standard, 20)
	require.NoError(t, err)
	assert.Equal(t, booking.ToggleBooked, res)
}

func TestSelectionService_CheckoutIncompleteKeepsSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewSelectionService(f.svc, NewMemorySelectionStore(time.Hour))
	uid := f.cat.CustomerID

	_, err := svc.Open(ctx, uid, f.cat.ShowingIDs[0], 2)
	require.NoError(t, err)
	_, _, err = svc.Checkout(ctx, uid, upi)
	assert.ErrorIs(t, err, booking.ErrIncompleteSelection)

	_, err = svc.Get(ctx, uid)
	assert.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, uid))
	_, err = svc.Get(ctx, uid)
	assert.ErrorIs(t, err, ErrSelectionNotFound)
}

func TestBookingService_StartedShowingNotBookable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, past := testutil.SeedMovie(t, f.db, "Metropolis", f.cat.ScreenID, []string{"2001-01-01"}, []string{"18:30:00"})

	_, err := f.svc.OpenSelection(ctx, past[0], 1)
	assert.ErrorIs(t, err, booking.ErrShowingStarted)

	// A selection opened before the show must not check out once it starts.
	sel := f.selection(t, []int{1}, nil)
	f.svc.now = func() time.Time { return time.Date(2030, 1, 15, 18, 30, 0, 0, time.UTC) }
	_, err = f.svc.Book(ctx, BookingRequest{CustomerID: f.cat.CustomerID, Selection: sel, Payment: upi})
	assert.ErrorIs(t, err, booking.ErrShowingStarted)
	assert.Zero(t, countTickets(t, f.db))
	assert.Zero(t, f.gateway.charges)

	f.svc.now = func() time.Time { return time.Date(2030, 1, 15, 18, 29, 0, 0, time.UTC) }
	_, err = f.svc.Book(ctx, BookingRequest{CustomerID: f.cat.CustomerID, Selection: sel, Payment: upi})
	assert.NoError(t, err)
}
