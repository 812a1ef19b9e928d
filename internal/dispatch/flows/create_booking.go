package flows

import (
	"fmt"
	"sync"
	"time"

	dispatch "guardpost/internal/dispatch/core"
	"guardpost/pkg/client"
	"guardpost/pkg/events"
	pkgkafka "guardpost/pkg/kafka"
	"guardpost/pkg/model"
	"guardpost/pkg/sealer"
)

const (
	ClientID        = "client_id"
	City            = "city"
	Address         = "address"
	StartTime       = "start_time"
	EndTime         = "end_time"
	Armed           = "armed"
	HourlyRateCents = "hourly_rate_cents"
	Notes           = "notes"

	ProcessCompany = "company"
	ProcessBooking = "booking"
	ProcessGuards  = "guards"
)

// CreateBookingFlow validates the request, resolves the highest-priority
// company covering the booking's city, creates the booking through the
// bookings service, and fans out sealed offers to eligible guards.
func CreateBookingFlow() *dispatch.Flow {
	return &dispatch.Flow{
		Name: "create_booking",
		Steps: []*dispatch.Step{
			dispatch.NewStep("validate_booking_input", ValidateBookingInput),
			dispatch.NewStep("resolve_company", ResolveCompany),
			dispatch.NewStep("create_booking", CreateBooking),
			dispatch.NewStep("fan_out_offers", FanOutOffers),
		},
	}
}

func ValidateBookingInput(ctx *dispatch.FlowContext) error {
	for _, param := range []string{ClientID, City, Address, StartTime, EndTime} {
		if dispatch.IsMissing(ctx.ExtractString(param)) {
			return dispatch.MissingParamErr(param)
		}
	}

	start, err := ctx.ExtractTime(StartTime)
	if err != nil {
		return err
	}
	end, err := ctx.ExtractTime(EndTime)
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("end_time must be after start_time")
	}

	ctx.Process[StartTime] = start
	ctx.Process[EndTime] = end
	return nil
}

func ResolveCompany(ctx *dispatch.FlowContext) error {
	city := ctx.ExtractString(City)

	resp, err := ctx.Client.CompanyClient.FindByCity(ctx.Ctx, city, 1, 0)
	if err != nil {
		return fmt.Errorf("company lookup failed: %w", err)
	}

	companies, _, err := ctx.Client.CompanyClient.DecodeCompanies(resp)
	if err != nil {
		return fmt.Errorf("failed to decode companies: %w", err)
	}
	if len(companies) == 0 {
		return fmt.Errorf("no active company covers city [%v]", city)
	}

	// The companies endpoint sorts by priority descending, so the first
	// result is the highest-priority company for the city.
	ctx.Process[ProcessCompany] = companies[0]
	return nil
}

func CreateBooking(ctx *dispatch.FlowContext) error {
	company := ctx.Process[ProcessCompany].(*model.Company)
	start := ctx.Process[StartTime].(time.Time)
	end := ctx.Process[EndTime].(time.Time)

	booking := &model.BookingRequest{
		ClientID:        ctx.ExtractString(ClientID),
		CompanyID:       company.ID,
		City:            ctx.ExtractString(City),
		Address:         ctx.ExtractString(Address),
		StartTime:       start,
		EndTime:         end,
		Armed:           ctx.ExtractBool(Armed),
		HourlyRateCents: ctx.ExtractInt(HourlyRateCents),
		Notes:           ctx.ExtractString(Notes),
	}

	resp, err := ctx.Client.BookingClient.Create(ctx.Ctx, booking)
	if err != nil {
		return fmt.Errorf("booking creation failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("booking service rejected the request: %s", client.GetErrorMessage(resp))
	}

	created, err := ctx.Client.BookingClient.DecodeBooking(resp)
	if err != nil {
		return fmt.Errorf("failed to decode created booking: %w", err)
	}

	ctx.Process[ProcessBooking] = created
	ctx.Output["booking"] = created
	return nil
}

func FanOutOffers(ctx *dispatch.FlowContext) error {
	booking := ctx.Process[ProcessBooking].(*model.BookingRequest)

	resp, err := ctx.Client.GuardClient.FindEligible(ctx.Ctx, booking.City, booking.Armed, ctx.Cfg.OfferMaxGuards, 0)
	if err != nil {
		return fmt.Errorf("guard lookup failed: %w", err)
	}

	guards, _, err := ctx.Client.GuardClient.DecodeGuards(resp)
	if err != nil {
		return fmt.Errorf("failed to decode guards: %w", err)
	}

	if len(guards) == 0 {
		ctx.Log.Warn("No eligible guards for booking",
			"booking_id", booking.ID,
			"city", booking.City,
			"armed", booking.Armed,
		)
		ctx.Output["offers_published"] = 0
		return nil
	}

	expiresAt := time.Now().UTC().Add(ctx.Cfg.OfferTTL)
	offered := 0

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, guard := range guards {
		wg.Add(1)
		go func(guard *model.Guard) {
			defer wg.Done()
			dispatch.RunWithRateLimitedConcurrency(func() {
				if err := publishOffer(ctx, booking, guard, expiresAt); err != nil {
					ctx.Log.Warn("Failed to publish offer",
						"booking_id", booking.ID,
						"guard_id", guard.ID,
						"error", err,
					)
					return
				}
				mu.Lock()
				offered++
				mu.Unlock()
			})
		}(guard)
	}
	wg.Wait()

	ctx.Log.Info("Offers published",
		"booking_id", booking.ID,
		"eligible_guards", len(guards),
		"offers_published", offered,
	)

	ctx.Output["offers_published"] = offered
	return nil
}

func publishOffer(ctx *dispatch.FlowContext, booking *model.BookingRequest, guard *model.Guard, expiresAt time.Time) error {
	token, err := sealer.CreateOpaqueToken(booking.ID, guard.ID)
	if err != nil {
		return fmt.Errorf("failed to seal accept token: %w", err)
	}

	payload := events.BookingOffered{
		BookingID:   booking.ID,
		GuardID:     guard.ID,
		AcceptToken: token,
		ExpiresAt:   expiresAt,
		OfferedAt:   time.Now().UTC(),
	}

	msg := pkgkafka.NewMessage().
		WithKey(booking.ID).
		WithValue(payload).
		WithEventType(events.EventTypeBookingOffered).
		WithBookingID(booking.ID).
		WithSource("dispatch").
		Build()
	msg.Topic = events.TopicBookingOffered

	return ctx.Producer.Publish(ctx.Ctx, msg)
}
