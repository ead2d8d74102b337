package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/longkey1/llmchat/internal/chat"
	"github.com/longkey1/llmchat/internal/llmchat"
	promptpkg "github.com/longkey1/llmchat/internal/llmchat/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCompleter struct {
	reply string
	err   error
}

func (f fixedCompleter) Complete(context.Context, []llmchat.Message) (string, error) {
	return f.reply, f.err
}

func TestSendOnce(t *testing.T) {
	session := chat.NewSession(fixedCompleter{reply: "# Title\n\nSee [docs](https://e.co)."}, &promptpkg.Prompt{})

	reply, err := sendOnce(context.Background(), session, "hello")
	require.NoError(t, err)
	assert.Equal(t, "[size=24][b]Title[/b][/size]\nSee [ref=https://e.co][color=88aaff]docs[/color][/ref].", reply)
	assert.Len(t, session.Transcript(), 2)
}

func TestSendOnceMatchesScreenTurn(t *testing.T) {
	session := chat.NewSession(fixedCompleter{reply: "\n  **hi** there  \n\n"}, &promptpkg.Prompt{})

	reply, err := sendOnce(context.Background(), session, "hello")
	require.NoError(t, err)

	turns := session.Transcript()
	require.Len(t, turns, 2)
	assert.Equal(t, "[b]hi[/b] there", reply)
	assert.Equal(t, "[b]Bot:[/b] "+reply, turns[1].Text)
}

func TestSendOnceErrors(t *testing.T) {
	session := chat.NewSession(fixedCompleter{err: errors.New("boom")}, &promptpkg.Prompt{})

	_, err := sendOnce(context.Background(), session, "  ")
	assert.EqualError(t, err, "no message given")

	_, err = sendOnce(context.Background(), session, "hello")
	assert.EqualError(t, err, "chat request failed: boom")
}

func TestPrintReplyPlain(t *testing.T) {
	var buf bytes.Buffer
	printReply(&buf, "[b]Bot[/b] says &bl;hi&br; [ref=https://e.co]here[/ref]", false)
	assert.Equal(t, "Bot says [hi] here\n", buf.String())
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", maskToken(""))
	assert.Equal(t, "********", maskToken("short"))
	assert.Equal(t, "sk-o...cdef", maskToken("sk-or-0123456789abcdef"))
}
