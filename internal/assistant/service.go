package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const systemPromptHeader = `You are the store assistant for a small retail business.
Answer questions about stock, sales, purchases and profitability using only
the snapshot below. When the snapshot does not contain the answer, say so
instead of guessing. Keep answers short and concrete.

`

// SnapshotPort provides the store snapshot text.
type SnapshotPort interface {
	Snapshot(ctx context.Context) (string, error)
}

// ErrEmptyQuestion indicates a blank question.
var ErrEmptyQuestion = errors.New("assistant: question required")

// Service answers free-form questions about the store.
type Service struct {
	snapshots SnapshotPort
	chat      ChatClient
}

// NewService builds Service.
func NewService(snapshots SnapshotPort, chat ChatClient) *Service {
	return &Service{snapshots: snapshots, chat: chat}
}

// Ask answers one question grounded on the current snapshot.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	snapshot, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("assistant: build snapshot: %w", err)
	}
	return s.chat.Complete(ctx, systemPromptHeader+snapshot, question)
}
