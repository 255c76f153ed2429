// Package runner executes loader scenarios: each one starts a responder
// with the requested behavior and runs the real remctl client against it.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/remctl-protocol/remctl-go/internal/testharness/loader"
	"github.com/remctl-protocol/remctl-go/internal/testharness/responder"
	"github.com/remctl-protocol/remctl-go/pkg/gss/gsstest"
	"github.com/remctl-protocol/remctl-go/pkg/log"
	"github.com/remctl-protocol/remctl-go/pkg/remctl"
	"github.com/remctl-protocol/remctl-go/pkg/wire"
)

// DefaultTimeout bounds a scenario without its own timeout.
const DefaultTimeout = 30 * time.Second

// Config configures a Runner.
type Config struct {
	// ScenarioDir is the directory of YAML scenarios.
	ScenarioDir string

	// Pattern selects scenarios whose ID or name matches (empty runs all).
	Pattern string

	// Timeout is the per-scenario default (default: DefaultTimeout).
	Timeout time.Duration

	// ProtocolLogger receives client protocol events. Nil disables capture.
	ProtocolLogger log.Logger

	// Logger receives client debug output. Nil disables logging.
	Logger *slog.Logger
}

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Scenario *loader.Scenario
	Passed   bool
	Duration time.Duration

	// Observed describes what the client returned.
	Observed string

	// Error explains a failure.
	Error error
}

// SuiteResult aggregates a run.
type SuiteResult struct {
	SuiteName string
	Results   []*ScenarioResult
	PassCount int
	FailCount int
	Duration  time.Duration
}

// Runner executes scenarios.
type Runner struct {
	config Config
}

// New creates a runner.
func New(config Config) *Runner {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	return &Runner{config: config}
}

// Run loads and executes the selected scenarios in ID order.
func (r *Runner) Run(ctx context.Context) (*SuiteResult, error) {
	scenarios, err := loader.LoadDirectory(r.config.ScenarioDir)
	if err != nil {
		return nil, err
	}

	var match *regexp.Regexp
	if r.config.Pattern != "" {
		match, err = regexp.Compile(r.config.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	start := time.Now()
	suite := &SuiteResult{SuiteName: r.config.ScenarioDir}
	defer func() { suite.Duration = time.Since(start) }()

	for _, sc := range scenarios {
		if match != nil && !match.MatchString(sc.ID) && !match.MatchString(sc.Name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return suite, err
		}

		res := r.RunScenario(ctx, sc)
		suite.Results = append(suite.Results, res)
		if res.Passed {
			suite.PassCount++
		} else {
			suite.FailCount++
		}
	}
	return suite, nil
}

// RunScenario executes one scenario.
func (r *Runner) RunScenario(ctx context.Context, sc *loader.Scenario) *ScenarioResult {
	start := time.Now()
	res := &ScenarioResult{Scenario: sc}

	result, runErr, err := r.execute(ctx, sc)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = fmt.Errorf("setup: %w", err)
		return res
	}

	if runErr != nil {
		res.Observed = ErrorKind(runErr) + " error: " + runErr.Error()
	} else {
		res.Observed = fmt.Sprintf("status %d, message %q", result.Status, result.Text())
	}
	res.Error = check(sc.Expect, result, runErr)
	res.Passed = res.Error == nil
	return res
}

// execute returns the client's result and error, or a setup error.
func (r *Runner) execute(ctx context.Context, sc *loader.Scenario) (*remctl.Result, error, error) {
	mech, err := gsstest.NewMechanism(gsstest.Options{
		Legs:       sc.Server.Legs,
		Unilateral: sc.Server.Unilateral,
		ConfirmLeg: sc.Server.ConfirmLeg,
		ForgeProof: sc.Server.ForgeProof,
	})
	if err != nil {
		return nil, nil, err
	}

	srv := responder.New(responder.Config{
		Mechanism: mech,
		Handler:   handlerFor(sc.Server.Reply),
		Behavior: responder.Behavior{
			SkipCommandMIC:      sc.Server.SkipCommandMIC,
			CorruptCommandMIC:   sc.Server.CorruptCommandMIC,
			CorruptResponse:     sc.Server.CorruptResponse,
			ResponseFlag:        wire.Flag(sc.Server.ResponseFlag),
			ContextFlag:         wire.Flag(sc.Server.ContextFlag),
			IntegrityOnly:       sc.Server.IntegrityOnly,
			MalformedResponse:   sc.Server.MalformedResponse,
			StallAfterHandshake: sc.Server.StallAfterHandshake,
		},
	})
	addr, err := srv.Listen()
	if err != nil {
		return nil, nil, fmt.Errorf("start responder: %w", err)
	}
	defer srv.Close()

	principal := sc.Client.Principal
	if principal == "" {
		principal = mech.Options().AcceptorName
	}
	var ioTimeout time.Duration
	if sc.Client.IOTimeout != "" {
		if ioTimeout, err = time.ParseDuration(sc.Client.IOTimeout); err != nil {
			return nil, nil, fmt.Errorf("io_timeout: %w", err)
		}
	}

	client, err := remctl.NewClient(mech, remctl.Config{
		Host:               addr.IP.String(),
		Port:               addr.Port,
		Principal:          principal,
		IOTimeout:          ioTimeout,
		MaxContextRounds:   sc.Client.MaxContextRounds,
		OptionalRequestMIC: sc.Client.OptionalRequestMIC,
		ProtocolLogger:     r.config.ProtocolLogger,
		Logger:             r.config.Logger,
	})
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, sc.TimeoutDuration(r.config.Timeout))
	defer cancel()

	result, runErr := client.RunCommand(ctx, sc.Command...)
	return result, runErr, nil
}

func handlerFor(reply *loader.Reply) responder.Handler {
	if reply == nil {
		return responder.Status
	}
	return func([][]byte) (int32, []byte) {
		return reply.Status, []byte(reply.Message)
	}
}

func check(expect loader.Expectation, result *remctl.Result, runErr error) error {
	if expect.Error != "" {
		if runErr == nil {
			return fmt.Errorf("expected %s error, got status %d", expect.Error, result.Status)
		}
		if kind := ErrorKind(runErr); kind != expect.Error {
			return fmt.Errorf("expected %s error, got %s: %w", expect.Error, kind, runErr)
		}
		return nil
	}

	if runErr != nil {
		return fmt.Errorf("unexpected error: %w", runErr)
	}
	if result.Status != expect.Status {
		return fmt.Errorf("status: expected %d, got %d", expect.Status, result.Status)
	}
	if expect.Message != nil && *expect.Message != result.Text() {
		return fmt.Errorf("message: expected %q, got %q", *expect.Message, result.Text())
	}
	return nil
}

// ErrorKind names the error kind carried by err, or "other".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, wire.ErrMutualAuthentication):
		return "mutual_authentication"
	case errors.Is(err, wire.ErrIntegrity):
		return "integrity"
	case errors.Is(err, wire.ErrSecurityContext):
		return "security_context"
	case errors.Is(err, wire.ErrProtocolIO):
		return "protocol_io"
	case errors.Is(err, wire.ErrProtocol):
		return "protocol"
	default:
		return "other"
	}
}
