package service

import (
	"context"
	"fmt"

	dispatch "guardpost/internal/dispatch/core"
	"guardpost/internal/dispatch/flows"
	"guardpost/pkg/config"
	pkgkafka "guardpost/pkg/kafka"
)

type DispatchService struct {
	engine   *dispatch.Engine
	cfg      *config.Config
	producer *pkgkafka.Producer
}

func NewDispatchService(cfg *config.Config, producer *pkgkafka.Producer) *DispatchService {
	return &DispatchService{
		engine: dispatch.NewEngine(
			flows.CreateBookingFlow(),
			flows.AcceptOfferFlow(),
			flows.OnboardCompanyFlow(),
		),
		cfg:      cfg,
		producer: producer,
	}
}

func (s *DispatchService) ExecuteFlow(ctx context.Context, flowName string, input map[string]any) (map[string]any, error) {
	flowCtx := dispatch.NewFlowContext(ctx, input, s.cfg, s.producer)
	if err := s.engine.Run(flowName, flowCtx); err != nil {
		return nil, fmt.Errorf("flow execution failed: %w", err)
	}
	return flowCtx.Output, nil
}

func (s *DispatchService) AvailableFlows() []string {
	return s.engine.FlowNames()
}
