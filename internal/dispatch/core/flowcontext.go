package core

import (
	"context"
	"fmt"
	"time"

	"guardpost/pkg/client"
	"guardpost/pkg/config"
	pkgkafka "guardpost/pkg/kafka"
	"guardpost/pkg/logger"
)

// FlowContext carries a single flow execution. Input holds the caller's
// parameters, Process holds intermediate step results, Output is what the
// caller gets back. Ctx is the request context steps pass to downstream
// calls.
type FlowContext struct {
	Ctx     context.Context
	Input   map[string]any
	Process map[string]any
	Output  map[string]any

	Client   *client.Client
	Producer *pkgkafka.Producer
	Cfg      *config.Config
	Log      *logger.Logger
}

func NewFlowContext(ctx context.Context, input map[string]any, cfg *config.Config, producer *pkgkafka.Producer) *FlowContext {
	return &FlowContext{
		Ctx:      ctx,
		Input:    input,
		Process:  make(map[string]any),
		Output:   make(map[string]any),
		Client:   cfg.Client,
		Producer: producer,
		Cfg:      cfg,
		Log:      cfg.Log,
	}
}

func (c *FlowContext) ExtractString(key string) string {
	raw, ok := c.Input[key]
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}

func (c *FlowContext) ExtractStringList(key string) []string {
	raw, ok := c.Input[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (c *FlowContext) ExtractBool(key string) bool {
	raw, ok := c.Input[key]
	if !ok {
		return false
	}
	b, _ := raw.(bool)
	return b
}

func (c *FlowContext) ExtractTime(key string) (time.Time, error) {
	s := c.ExtractString(key)
	if s == "" {
		return time.Time{}, MissingParamErr(key)
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("param [%v] is not a valid RFC3339 timestamp: %w", key, err)
	}
	return parsed, nil
}

// ExtractInt accepts both JSON numbers (float64 after decoding) and ints.
func (c *FlowContext) ExtractInt(key string) int64 {
	raw, ok := c.Input[key]
	if !ok {
		return 0
	}
	switch v := raw.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func IsMissing(str string) bool {
	return len(str) == 0
}

func MissingParamErr(paramName string) error {
	return fmt.Errorf("required param [%v] is missing", paramName)
}
