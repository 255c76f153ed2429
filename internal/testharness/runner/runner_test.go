package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remctl-protocol/remctl-go/internal/testharness/loader"
	"github.com/remctl-protocol/remctl-go/pkg/log"
	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

const scenarioDir = "../testdata/scenarios"

func TestBundledScenariosPass(t *testing.T) {
	suite, err := New(Config{ScenarioDir: scenarioDir}).Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, suite.Results)

	for _, res := range suite.Results {
		assert.True(t, res.Passed, "%s (%s): %v; observed %s",
			res.Scenario.ID, res.Scenario.Name, res.Error, res.Observed)
	}
	assert.Equal(t, len(suite.Results), suite.PassCount)
	assert.Zero(t, suite.FailCount)
	assert.Positive(t, suite.Duration)
}

func TestPatternSelectsScenarios(t *testing.T) {
	suite, err := New(Config{ScenarioDir: scenarioDir, Pattern: "^TC-HS-"}).Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, suite.Results)
	for _, res := range suite.Results {
		assert.Regexp(t, "^TC-HS-", res.Scenario.ID)
	}
}

func TestInvalidPattern(t *testing.T) {
	_, err := New(Config{ScenarioDir: scenarioDir, Pattern: "("}).Run(context.Background())
	assert.ErrorContains(t, err, "invalid pattern")
}

func TestCancelledRunStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	suite, err := New(Config{ScenarioDir: scenarioDir}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, suite.Results)
}

func TestProtocolLoggerReceivesEvents(t *testing.T) {
	logger := &recorder{}

	sc := &loader.Scenario{ID: "X", Command: []string{"status"}}
	res := New(Config{ProtocolLogger: logger}).RunScenario(context.Background(), sc)
	require.True(t, res.Passed, "%v", res.Error)

	logger.mu.Lock()
	defer logger.mu.Unlock()
	assert.NotEmpty(t, logger.events)
}

type recorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recorder) Log(event log.Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func TestMismatchedMessageFails(t *testing.T) {
	msg := "not ok"
	sc := &loader.Scenario{
		ID:      "X",
		Command: []string{"status"},
		Expect:  loader.Expectation{Message: &msg},
	}
	res := New(Config{}).RunScenario(context.Background(), sc)
	assert.False(t, res.Passed)
	assert.ErrorContains(t, res.Error, "message")
	assert.Contains(t, res.Observed, `"ok"`)
}

func TestFixedReply(t *testing.T) {
	msg := "denied\n"
	sc := &loader.Scenario{
		ID:      "X",
		Server:  loader.ServerSpec{Reply: &loader.Reply{Status: 7, Message: msg}},
		Command: []string{"anything"},
		Expect:  loader.Expectation{Status: 7, Message: &msg},
	}
	res := New(Config{}).RunScenario(context.Background(), sc)
	assert.True(t, res.Passed, "%v", res.Error)
}

func TestExpectedErrorMissing(t *testing.T) {
	sc := &loader.Scenario{
		ID:      "X",
		Command: []string{"status"},
		Expect:  loader.Expectation{Error: "integrity"},
	}
	res := New(Config{}).RunScenario(context.Background(), sc)
	assert.False(t, res.Passed)
	assert.ErrorContains(t, res.Error, "expected integrity error")
}

func TestBadIOTimeoutIsSetupError(t *testing.T) {
	sc := &loader.Scenario{
		ID:      "X",
		Client:  loader.ClientSpec{IOTimeout: "soon"},
		Command: []string{"status"},
	}
	res := New(Config{}).RunScenario(context.Background(), sc)
	assert.False(t, res.Passed)
	assert.ErrorContains(t, res.Error, "setup")
}

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{wire.ErrMutualAuthentication, "mutual_authentication"},
		{fmt.Errorf("%w: bad mic", wire.ErrIntegrity), "integrity"},
		{fmt.Errorf("%w: %w", wire.ErrSecurityContext, errors.New("expired")), "security_context"},
		{fmt.Errorf("%w: %w", wire.ErrProtocolIO, context.DeadlineExceeded), "protocol_io"},
		{wire.ErrProtocol, "protocol"},
		{errors.New("boom"), "other"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ErrorKind(tc.err), tc.err.Error())
	}
}
