package flows

import (
	"fmt"

	dispatch "guardpost/internal/dispatch/core"
	"guardpost/pkg/client"
	"guardpost/pkg/model"
)

const (
	CompanyName  = "name"
	Cities       = "cities"
	ContactPhone = "contact_phone"
	Priority     = "priority"
	Guards       = "guards"
)

// OnboardCompanyFlow registers a security company and its initial guard
// roster in one call. Guard failures do not abort the flow; the company
// stands and the failures are reported in the output.
func OnboardCompanyFlow() *dispatch.Flow {
	return &dispatch.Flow{
		Name: "onboard_company",
		Steps: []*dispatch.Step{
			dispatch.NewStep("validate_company_input", ValidateCompanyInput),
			dispatch.NewStep("create_company", CreateCompany),
			dispatch.NewStep("create_guards", CreateGuards),
		},
	}
}

func ValidateCompanyInput(ctx *dispatch.FlowContext) error {
	if dispatch.IsMissing(ctx.ExtractString(CompanyName)) {
		return dispatch.MissingParamErr(CompanyName)
	}
	if dispatch.IsMissing(ctx.ExtractString(ContactPhone)) {
		return dispatch.MissingParamErr(ContactPhone)
	}
	if len(ctx.ExtractStringList(Cities)) == 0 {
		return dispatch.MissingParamErr(Cities)
	}
	return nil
}

func CreateCompany(ctx *dispatch.FlowContext) error {
	company := &model.Company{
		Name:         ctx.ExtractString(CompanyName),
		Cities:       ctx.ExtractStringList(Cities),
		ContactPhone: ctx.ExtractString(ContactPhone),
		Priority:     int(ctx.ExtractInt(Priority)),
		Active:       true,
	}

	resp, err := ctx.Client.CompanyClient.Create(ctx.Ctx, company)
	if err != nil {
		return fmt.Errorf("company creation failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("company service rejected the request: %s", client.GetErrorMessage(resp))
	}

	created, err := ctx.Client.CompanyClient.DecodeCompany(resp)
	if err != nil {
		return fmt.Errorf("failed to decode created company: %w", err)
	}

	ctx.Process[ProcessCompany] = created
	ctx.Output["company"] = created
	return nil
}

func CreateGuards(ctx *dispatch.FlowContext) error {
	company := ctx.Process[ProcessCompany].(*model.Company)

	raw, ok := ctx.Input[Guards].([]any)
	if !ok || len(raw) == 0 {
		ctx.Output["guards_created"] = 0
		return nil
	}

	created := 0
	var failures []string
	for _, item := range raw {
		spec, ok := item.(map[string]any)
		if !ok {
			failures = append(failures, "guard entry is not an object")
			continue
		}

		guard := &model.Guard{
			CompanyID:    company.ID,
			FullName:     stringField(spec, "full_name"),
			Phone:        stringField(spec, "phone"),
			City:         stringField(spec, "city"),
			ArmedLicense: boolField(spec, "armed_license"),
			Active:       true,
		}

		resp, err := ctx.Client.GuardClient.Create(ctx.Ctx, guard)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", guard.FullName, err))
			continue
		}
		if resp.StatusCode >= 400 {
			failures = append(failures, fmt.Sprintf("%s: %s", guard.FullName, client.GetErrorMessage(resp)))
			continue
		}
		created++
	}

	if len(failures) > 0 {
		ctx.Log.Warn("Some guards failed to onboard",
			"company_id", company.ID,
			"failed", len(failures),
			"failures", failures,
		)
		ctx.Output["guard_failures"] = failures
	}

	ctx.Output["guards_created"] = created
	return nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}
