package interactive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remctl-protocol/remctl-go/pkg/remctl"
	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

type fakeRunner struct {
	calls  [][][]byte
	result *remctl.Result
	err    error
}

func (f *fakeRunner) Run(_ context.Context, args [][]byte) (*remctl.Result, error) {
	f.calls = append(f.calls, args)
	return f.result, f.err
}

func newTestShell(runner Runner) (*Shell, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Shell{runner: runner, out: &buf}, &buf
}

func TestExecuteRunsCommand(t *testing.T) {
	runner := &fakeRunner{result: &remctl.Result{Status: 0, Message: []byte("ok\n")}}
	shell, out := newTestShell(runner)

	quit := shell.Execute(context.Background(), `status "two words" x`)
	assert.False(t, quit)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, [][]byte{[]byte("status"), []byte("two words"), []byte("x")}, runner.calls[0])
	assert.Equal(t, "ok\n", out.String())
	assert.Zero(t, shell.status)
}

func TestExecuteReportsNonZeroStatus(t *testing.T) {
	runner := &fakeRunner{result: &remctl.Result{Status: 3, Message: []byte("denied")}}
	shell, out := newTestShell(runner)

	shell.Execute(context.Background(), "restart web")
	assert.Equal(t, "denied\n[status 3]\n", out.String())
	assert.Equal(t, 3, shell.status)
}

func TestExecuteReportsError(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("%w: bad mic", wire.ErrIntegrity)}
	shell, out := newTestShell(runner)

	quit := shell.Execute(context.Background(), "status")
	assert.False(t, quit)
	assert.Equal(t, "remctl: integrity check failed: bad mic\n", out.String())
	assert.Equal(t, 255, shell.status)
}

func TestExecuteBuiltins(t *testing.T) {
	runner := &fakeRunner{}
	shell, out := newTestShell(runner)

	assert.False(t, shell.Execute(context.Background(), "   "))
	assert.False(t, shell.Execute(context.Background(), "?"))
	assert.Contains(t, out.String(), "quit")
	assert.True(t, shell.Execute(context.Background(), "quit"))
	assert.True(t, shell.Execute(context.Background(), "exit"))
	assert.Empty(t, runner.calls)
}

func TestExecuteQuitWithArgumentsIsACommand(t *testing.T) {
	runner := &fakeRunner{result: &remctl.Result{}}
	shell, _ := newTestShell(runner)

	assert.False(t, shell.Execute(context.Background(), "exit now"))
	assert.Len(t, runner.calls, 1)
}

func TestExecuteBadQuoting(t *testing.T) {
	runner := &fakeRunner{}
	shell, out := newTestShell(runner)

	shell.Execute(context.Background(), `echo "open`)
	assert.Contains(t, out.String(), ErrUnterminatedQuote.Error())
	assert.Empty(t, runner.calls)
}

func TestSplitArgs(t *testing.T) {
	cases := []struct {
		in   string
		want []string
		err  error
	}{
		{"", nil, nil},
		{"a b\tc", []string{"a", "b", "c"}, nil},
		{`a "b c" 'd e'`, []string{"a", "b c", "d e"}, nil},
		{`a ""`, []string{"a", ""}, nil},
		{`a\ b`, []string{"a b"}, nil},
		{`'a\b'`, []string{`a\b`}, nil},
		{`"say \"hi\""`, []string{`say "hi"`}, nil},
		{`x"y"z`, []string{"xyz"}, nil},
		{`'open`, nil, ErrUnterminatedQuote},
		{`trailing\`, nil, ErrUnterminatedQuote},
	}
	for _, tc := range cases {
		got, err := SplitArgs(tc.in)
		if tc.err != nil {
			assert.True(t, errors.Is(err, tc.err), tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
