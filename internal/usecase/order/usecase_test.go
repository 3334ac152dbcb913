package order

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LavaJover/festival-order-service/internal/domain"
	publisher "github.com/LavaJover/festival-order-service/internal/infrastructure/kafka"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/memory"
	orderdto "github.com/LavaJover/festival-order-service/internal/usecase/dto/order"
)

type recordingPort struct {
	events []publisher.OrderEvent
}

func (r *recordingPort) Publish(_ string, msgs ...domain.Message) error {
	for _, m := range msgs {
		var e publisher.OrderEvent
		if err := json.Unmarshal(m.Value, &e); err == nil {
			r.events = append(r.events, e)
		}
	}
	return nil
}

var testPricing = Pricing{
	CodePrefix:           "TSXHL",
	UnitPrice:            20000,
	MinQuantityForTicket: 3,
	TicketsPerPromo:      1,
	BuyXGet1Free:         10,
}

type fixture struct {
	uc    *DefaultOrderUsecase
	store *memory.Store
	port  *recordingPort
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		store: memory.NewStore(),
		port:  &recordingPort{},
		now:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	uc, err := NewDefaultOrderUsecase(
		f.store.Orders(),
		testPricing,
		15*time.Minute,
		publisher.NewEventPublisher(f.port, "orders", "games", logger),
		nil,
		logger,
	)
	require.NoError(t, err)
	uc.Now = func() time.Time { return f.now }
	f.uc = uc
	return f
}

func validInput(code string, qty int64) *orderdto.CreateOrderInput {
	return &orderdto.CreateOrderInput{
		OrderCode: code,
		Name:      "Nguyen Van A",
		Phone:     "0901234567",
		Class:     "10.11",
		Quantity:  qty,
	}
}

func TestPricing(t *testing.T) {
	cases := []struct {
		qty, total, tickets, free int64
	}{
		{qty: 1, total: 20000, tickets: 0, free: 0},
		{qty: 2, total: 40000, tickets: 0, free: 0},
		{qty: 3, total: 60000, tickets: 1, free: 0},
		{qty: 7, total: 140000, tickets: 2, free: 0},
		{qty: 10, total: 200000, tickets: 3, free: 1},
		{qty: 21, total: 420000, tickets: 7, free: 2},
	}
	for _, tc := range cases {
		require.Equal(t, tc.total, testPricing.Total(tc.qty), "total for %d", tc.qty)
		require.Equal(t, tc.tickets, testPricing.Tickets(tc.qty), "tickets for %d", tc.qty)
		require.Equal(t, tc.free, testPricing.FreePortions(tc.qty), "free portions for %d", tc.qty)
	}
}

func TestCreateComputesPricingOnServer(t *testing.T) {
	f := newFixture(t)

	o, err := f.uc.CreateOrUpdateOrder(context.Background(), validInput("tsxhl001", 3))
	require.NoError(t, err)
	require.Equal(t, "TSXHL001", o.OrderCode)
	require.EqualValues(t, 60000, o.Total)
	require.EqualValues(t, 1, o.Tickets)
	require.Equal(t, domain.StatusPending, o.Status)
	require.Equal(t, f.now, o.CreatedAt)
}

func TestCreateGeneratesCode(t *testing.T) {
	f := newFixture(t)

	o, err := f.uc.CreateOrUpdateOrder(context.Background(), validInput("", 1))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(o.OrderCode, "TSXHL"))
	require.Len(t, o.OrderCode, len("TSXHL")+10)
	require.Equal(t, strings.ToUpper(o.OrderCode), o.OrderCode)
}

func TestCreateTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.uc.CreateOrUpdateOrder(ctx, validInput("TSXHL001", 3))
	require.NoError(t, err)

	f.now = f.now.Add(time.Minute)
	second, err := f.uc.CreateOrUpdateOrder(ctx, validInput("TSXHL001", 3))
	require.NoError(t, err)

	all, err := f.uc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.Equal(t, first.Total, second.Total)
	require.Equal(t, first.Status, second.Status)
}

func TestCreateResubmitKeepsPaidAndDelivered(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.uc.CreateOrUpdateOrder(ctx, validInput("TSXHL001", 3))
	require.NoError(t, err)

	paid, delivered := "paid", true
	_, err = f.uc.UpdateOrder(ctx, &orderdto.UpdateOrderInput{OrderCode: "TSXHL001", Status: &paid, Delivered: &delivered})
	require.NoError(t, err)

	o, err := f.uc.CreateOrUpdateOrder(ctx, validInput("TSXHL001", 3))
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, o.Status)
	require.True(t, o.Delivered)
}

func TestCreateValidation(t *testing.T) {
	cases := map[string]func(in *orderdto.CreateOrderInput){
		"name":      func(in *orderdto.CreateOrderInput) { in.Name = " " },
		"phone":     func(in *orderdto.CreateOrderInput) { in.Phone = "" },
		"class":     func(in *orderdto.CreateOrderInput) { in.Class = "" },
		"quantity":  func(in *orderdto.CreateOrderInput) { in.Quantity = 0 },
		"orderCode": func(in *orderdto.CreateOrderInput) { in.OrderCode = "TS-1" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			f := newFixture(t)
			in := validInput("TSXHL001", 1)
			mutate(in)

			_, err := f.uc.CreateOrUpdateOrder(context.Background(), in)
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Equal(t, field, vErr.Field)

			all, err := f.uc.ListOrders(context.Background())
			require.NoError(t, err)
			require.Empty(t, all)
		})
	}

	t.Run("malformed phone", func(t *testing.T) {
		f := newFixture(t)
		in := validInput("TSXHL001", 1)
		in.Phone = "09012345"
		_, err := f.uc.CreateOrUpdateOrder(context.Background(), in)
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Equal(t, "phone", vErr.Field)
	})
}

func TestUpdateOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.uc.CreateOrUpdateOrder(ctx, validInput("TSXHL001", 3))
	require.NoError(t, err)

	delivered := true
	o, err := f.uc.UpdateOrder(ctx, &orderdto.UpdateOrderInput{OrderCode: "TSXHL001", Delivered: &delivered})
	require.NoError(t, err)
	require.True(t, o.Delivered)
	require.Equal(t, domain.StatusPending, o.Status)

	paid := "paid"
	o, err = f.uc.UpdateOrder(ctx, &orderdto.UpdateOrderInput{OrderCode: "TSXHL001", Status: &paid})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, o.Status)
	require.Len(t, f.port.events, 1)
	require.Equal(t, publisher.EventOrderPaid, f.port.events[0].Type)
	require.Equal(t, "admin", f.port.events[0].Source)

	// repeating the confirmation is a no-op
	_, err = f.uc.UpdateOrder(ctx, &orderdto.UpdateOrderInput{OrderCode: "TSXHL001", Status: &paid})
	require.NoError(t, err)
	require.Len(t, f.port.events, 1)

	pending := "pending"
	_, err = f.uc.UpdateOrder(ctx, &orderdto.UpdateOrderInput{OrderCode: "TSXHL001", Status: &pending})
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	bogus := "refunded"
	_, err = f.uc.UpdateOrder(ctx, &orderdto.UpdateOrderInput{OrderCode: "TSXHL001", Status: &bogus})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = f.uc.UpdateOrder(ctx, &orderdto.UpdateOrderInput{OrderCode: "MISSING"})
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestDeleteOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, code := range []string{"TSXHL001", "TSXHL002", "TSXHL003"} {
		_, err := f.uc.CreateOrUpdateOrder(ctx, validInput(code, 1))
		require.NoError(t, err)
	}

	require.NoError(t, f.uc.DeleteOrder(ctx, "TSXHL001"))
	require.ErrorIs(t, f.uc.DeleteOrder(ctx, "TSXHL001"), domain.ErrOrderNotFound)

	n, err := f.uc.DeleteAllOrders(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestExpireStalePending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	t0 := f.now

	_, err := f.uc.CreateOrUpdateOrder(ctx, validInput("TSXHL001", 1))
	require.NoError(t, err)
	_, err = f.uc.CreateOrUpdateOrder(ctx, validInput("TSXHL002", 1))
	require.NoError(t, err)
	paid := "paid"
	_, err = f.uc.UpdateOrder(ctx, &orderdto.UpdateOrderInput{OrderCode: "TSXHL002", Status: &paid})
	require.NoError(t, err)

	f.now = t0.Add(10 * time.Minute)
	out, err := f.uc.ExpireStalePending(ctx, 15*time.Minute)
	require.NoError(t, err)
	require.Zero(t, out.Deleted)

	f.now = t0.Add(16 * time.Minute)
	out, err = f.uc.CleanupExpiredOrders(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, out.Deleted)
	require.Equal(t, []string{"TSXHL001"}, out.Codes)

	all, err := f.uc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "TSXHL002", all[0].OrderCode)

	last := f.port.events[len(f.port.events)-1]
	require.Equal(t, publisher.EventOrderExpired, last.Type)
	require.Equal(t, "TSXHL001", last.OrderCode)
}

func TestLowercaseCodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	o, err := f.uc.CreateOrUpdateOrder(ctx, validInput(" tsxhl777 ", 3))
	require.NoError(t, err)
	require.Equal(t, "TSXHL777", o.OrderCode)

	delivered := true
	o, err = f.uc.UpdateOrder(ctx, &orderdto.UpdateOrderInput{OrderCode: "tsxhl777", Delivered: &delivered})
	require.NoError(t, err)
	require.True(t, o.Delivered)

	require.NoError(t, f.uc.DeleteOrder(ctx, "tsxhl777"))
	all, err := f.uc.ListOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}
