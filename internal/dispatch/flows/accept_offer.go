package flows

import (
	"fmt"
	"net/http"

	dispatch "guardpost/internal/dispatch/core"
	"guardpost/pkg/client"
	"guardpost/pkg/sealer"
)

const (
	AcceptToken = "accept_token"

	ProcessBookingID = "booking_id"
	ProcessGuardID   = "guard_id"
)

// AcceptOfferFlow unseals an offer token and forwards the acceptance to the
// bookings service, whose arbiter decides the race. The flow reports the
// arbiter's verdict; it never second-guesses it.
func AcceptOfferFlow() *dispatch.Flow {
	return &dispatch.Flow{
		Name: "accept_offer",
		Steps: []*dispatch.Step{
			dispatch.NewStep("unseal_token", UnsealToken),
			dispatch.NewStep("forward_acceptance", ForwardAcceptance),
		},
	}
}

func UnsealToken(ctx *dispatch.FlowContext) error {
	token := ctx.ExtractString(AcceptToken)
	if dispatch.IsMissing(token) {
		return dispatch.MissingParamErr(AcceptToken)
	}

	bookingID, guardID, err := sealer.ParseOpaqueToken(token)
	if err != nil {
		return fmt.Errorf("invalid accept token: %w", err)
	}

	ctx.Process[ProcessBookingID] = bookingID
	ctx.Process[ProcessGuardID] = guardID
	return nil
}

func ForwardAcceptance(ctx *dispatch.FlowContext) error {
	bookingID := ctx.Process[ProcessBookingID].(string)
	guardID := ctx.Process[ProcessGuardID].(string)

	resp, err := ctx.Client.BookingClient.Accept(ctx.Ctx, bookingID, guardID)
	if err != nil {
		return fmt.Errorf("acceptance forwarding failed: %w", err)
	}

	ctx.Output["booking_id"] = bookingID
	ctx.Output["guard_id"] = guardID

	switch resp.StatusCode {
	case http.StatusOK:
		var result struct {
			Data struct {
				Outcome string `json:"outcome"`
			} `json:"data"`
		}
		if err := resp.DecodeJSON(&result); err != nil {
			return fmt.Errorf("failed to decode acceptance result: %w", err)
		}
		ctx.Output["outcome"] = result.Data.Outcome
	case http.StatusConflict:
		ctx.Output["outcome"] = "unavailable"
	case http.StatusServiceUnavailable:
		ctx.Output["outcome"] = "transient_failure"
	default:
		return fmt.Errorf("acceptance rejected: %s", client.GetErrorMessage(resp))
	}

	ctx.Log.Info("Offer acceptance forwarded",
		"booking_id", bookingID,
		"guard_id", guardID,
		"outcome", ctx.Output["outcome"],
	)

	return nil
}
