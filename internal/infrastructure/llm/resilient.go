package llm

import (
	"context"

	"github.com/kirillkom/termlens/internal/core/ports"
	"github.com/kirillkom/termlens/internal/infrastructure/resilience"
)

// ResilientModel runs every completion through the executor under one
// operation name, so analysis and chat trip separate breakers.
type ResilientModel struct {
	model     ports.ChatModel
	executor  *resilience.Executor
	operation string
}

func NewResilientModel(model ports.ChatModel, executor *resilience.Executor, operation string) *ResilientModel {
	return &ResilientModel{model: model, executor: executor, operation: operation}
}

func (m *ResilientModel) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	out, err := resilience.Call(ctx, m.executor, m.operation, func(ctx context.Context) (string, error) {
		return m.model.Complete(ctx, req)
	}, resilience.ClassifyRemoteError)
	if err != nil {
		return "", resilience.WrapTemporaryIfNeeded(m.operation, err)
	}
	return out, nil
}
