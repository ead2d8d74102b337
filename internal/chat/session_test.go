package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/longkey1/llmchat/internal/llmchat"
	"github.com/longkey1/llmchat/internal/llmchat/config"
	"github.com/longkey1/llmchat/internal/llmchat/prompt"
	"github.com/longkey1/llmchat/internal/markup"
	"github.com/longkey1/llmchat/internal/openrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	reply    string
	err      error
	received []llmchat.Message
}

func (s *stubCompleter) Complete(_ context.Context, messages []llmchat.Message) (string, error) {
	s.received = messages
	return s.reply, s.err
}

func newSession(c llmchat.Completer) *Session {
	return NewSession(c, &prompt.Prompt{System: config.DefaultSystemPrompt})
}

func serverSession(t *testing.T, status int, body string) *Session {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)

	client := openrouter.NewClient(&config.Config{
		BaseURL: server.URL,
		Token:   "sk-or-test",
		Model:   openrouter.DefaultModel,
		Timeout: 5,
	})
	return newSession(client)
}

func run(t *testing.T, s *Session, text string) Turn {
	t.Helper()
	job, ok := s.Submit(text)
	require.True(t, ok)
	turn, ok := s.Complete(job(context.Background()))
	require.True(t, ok)
	return turn
}

func TestSubmitAppendsEscapedUserTurn(t *testing.T) {
	s := newSession(&stubCompleter{reply: "ok"})

	job, ok := s.Submit("  [b]not bold[/b] & more  ")
	require.True(t, ok)
	require.NotNil(t, job)

	turns := s.Transcript()
	require.Len(t, turns, 1)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, "[b]You:[/b] &bl;b&br;not bold&bl;/b&br; &amp; more", turns[0].Text)
	assert.NotEmpty(t, turns[0].ID)
	assert.Equal(t, 1, s.InFlight())
}

func TestSubmitWhitespaceOnly(t *testing.T) {
	s := newSession(&stubCompleter{reply: "ok"})

	for _, input := range []string{"", "   ", "\t\n"} {
		job, ok := s.Submit(input)
		assert.False(t, ok, "input %q", input)
		assert.Nil(t, job)
	}
	assert.Empty(t, s.Transcript())
	assert.Zero(t, s.InFlight())
}

func TestJobSendsSystemAndUserMessages(t *testing.T) {
	stub := &stubCompleter{reply: "ok"}
	s := newSession(stub)

	run(t, s, " hello ")

	assert.Equal(t, []llmchat.Message{
		{Role: llmchat.RoleSystem, Content: config.DefaultSystemPrompt},
		{Role: llmchat.RoleUser, Content: "hello"},
	}, stub.received)
}

func TestCompleteRendersReply(t *testing.T) {
	s := serverSession(t, http.StatusOK, `{"choices":[{"message":{"content":"**hi**"}}]}`)

	turn := run(t, s, "hello")

	assert.Equal(t, RoleBot, turn.Role)
	assert.Equal(t, "[b]Bot:[/b] [b]hi[/b]", turn.Text)
	assert.Contains(t, turn.Text, "[b]hi[/b]")
	assert.Zero(t, s.InFlight())
	assert.Len(t, s.Transcript(), 2)
}

func TestCompleteServerError(t *testing.T) {
	s := serverSession(t, http.StatusTooManyRequests, `{"error":{"code":429,"message":"rate limited"}}`)

	turn := run(t, s, "hello")

	assert.Equal(t, RoleError, turn.Role)
	assert.Equal(t, "[color=ff3333][b]Server Error:[/b] rate limited[/color]", turn.Text)
}

func TestCompleteServerErrorFallsBackToBody(t *testing.T) {
	s := serverSession(t, http.StatusBadGateway, `upstream [down]`)

	turn := run(t, s, "hello")

	assert.Equal(t, "[color=ff3333][b]Server Error:[/b] upstream &bl;down&br;[/color]", turn.Text)
}

func TestCompleteMalformedResponse(t *testing.T) {
	s := serverSession(t, http.StatusOK, `{"choices":[]}`)

	turn := run(t, s, "hello")

	assert.Equal(t, RoleError, turn.Role)
	assert.Equal(t, `[color=ff3333]&bl;Error: Invalid response from server: {"choices":&bl;&br;}&br;[/color]`, turn.Text)
}

func TestCompleteGeneralError(t *testing.T) {
	s := newSession(&stubCompleter{err: errors.New("dial tcp: connection refused")})

	turn := run(t, s, "hello")

	assert.Equal(t, "[color=ff3333][b]General Error:[/b] dial tcp: connection refused[/color]", turn.Text)
}

func TestCompleteAfterClose(t *testing.T) {
	s := newSession(&stubCompleter{reply: "late"})
	job, ok := s.Submit("hello")
	require.True(t, ok)

	s.Close()
	_, ok = s.Complete(job(context.Background()))
	assert.False(t, ok)
	assert.Len(t, s.Transcript(), 1)

	_, ok = s.Submit("again")
	assert.False(t, ok)
	assert.True(t, s.Closed())
}

func TestCompletionOrder(t *testing.T) {
	s := newSession(&stubCompleter{reply: "same"})
	first, ok := s.Submit("first")
	require.True(t, ok)
	second, ok := s.Submit("second")
	require.True(t, ok)
	assert.Equal(t, 2, s.InFlight())

	late := first(context.Background())
	late.Reply = "first reply"
	early := second(context.Background())
	early.Reply = "second reply"

	_, ok = s.Complete(early)
	require.True(t, ok)
	_, ok = s.Complete(late)
	require.True(t, ok)

	var texts []string
	for _, turn := range s.Transcript() {
		texts = append(texts, markup.Strip(turn.Text))
	}
	assert.Equal(t, []string{"You: first", "You: second", "Bot: second reply", "Bot: first reply"}, texts)
	assert.Zero(t, s.InFlight())
}

func TestReportLinkError(t *testing.T) {
	s := newSession(&stubCompleter{})
	turn := s.ReportLinkError("ftp://x", errors.New("unsupported scheme [ftp]"))

	assert.Equal(t, RoleError, turn.Role)
	assert.Equal(t, "[color=ff3333]Error opening link: unsupported scheme &bl;ftp&br;[/color]", turn.Text)
}

func TestTranscriptIsACopy(t *testing.T) {
	s := newSession(&stubCompleter{})
	_, ok := s.Submit("hello")
	require.True(t, ok)

	turns := s.Transcript()
	turns[0].Text = "changed"
	assert.NotEqual(t, "changed", s.Transcript()[0].Text)
}

func TestTurnTimestamps(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := newSession(&stubCompleter{})
	s.now = func() time.Time { return fixed }

	_, ok := s.Submit("hello")
	require.True(t, ok)
	assert.Equal(t, fixed, s.Transcript()[0].At)
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "user", RoleUser.String())
	assert.Equal(t, "bot", RoleBot.String())
	assert.Equal(t, "error", RoleError.String())
	assert.Equal(t, "unknown", Role(9).String())
}

func TestRenderReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{name: "plain", reply: "hello", want: "hello"},
		{name: "surrounding whitespace", reply: "  \n**hi**  \n\n", want: "[b]hi[/b]"},
		{name: "heading first", reply: "# Title\n\nbody", want: "[size=24][b]Title[/b][/size]\nbody"},
		{name: "list keeps indent", reply: "- a\n- b", want: "  • a\n  • b"},
		{name: "empty", reply: " \n ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderReply(tt.reply))
		})
	}
}

func TestCompleteUsesRenderReply(t *testing.T) {
	s := newSession(&stubCompleter{reply: "\n\n  *padded*  \n"})

	turn := run(t, s, "hello")

	assert.Equal(t, "[b]Bot:[/b] "+RenderReply("\n\n  *padded*  \n"), turn.Text)
	assert.Equal(t, "[b]Bot:[/b] [i]padded[/i]", turn.Text)
}
