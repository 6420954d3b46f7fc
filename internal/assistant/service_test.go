package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSnapshots struct {
	text string
	err  error
}

func (f fakeSnapshots) Snapshot(context.Context) (string, error) {
	return f.text, f.err
}

type fakeChat struct {
	gotSystem   string
	gotQuestion string
	answer      string
}

func (f *fakeChat) Complete(_ context.Context, systemPrompt, question string) (string, error) {
	f.gotSystem = systemPrompt
	f.gotQuestion = question
	return f.answer, nil
}

func TestAskGroundsPromptOnSnapshot(t *testing.T) {
	chat := &fakeChat{answer: "You have 12 bags of rice."}
	svc := NewService(fakeSnapshots{text: "STOCK ITEMS:\n- Basmati Rice 5kg | qty 12"}, chat)

	answer, err := svc.Ask(context.Background(), "  How much rice is left?  ")
	require.NoError(t, err)
	require.Equal(t, "You have 12 bags of rice.", answer)
	require.Contains(t, chat.gotSystem, "Basmati Rice 5kg | qty 12")
	require.Contains(t, chat.gotSystem, "store assistant")
	require.Equal(t, "How much rice is left?", chat.gotQuestion, "question is trimmed")
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	svc := NewService(fakeSnapshots{}, &fakeChat{})
	_, err := svc.Ask(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAskPropagatesSnapshotFailure(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(fakeSnapshots{err: boom}, &fakeChat{})
	_, err := svc.Ask(context.Background(), "anything")
	require.ErrorIs(t, err, boom)
}
