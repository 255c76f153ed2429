// Command remctl-test runs the client against scripted in-process servers.
//
// Each scenario starts a responder with a test security mechanism,
// optionally told to misbehave, and checks that the client reports the
// expected status or error kind.
//
// Usage:
//
//	remctl-test [flags] [scenario-pattern]
//
// Flags:
//
//	-scenarios string      Path to the scenario directory
//	-timeout duration      Per-scenario timeout (default 30s)
//	-verbose               Show descriptions and observed outcomes
//	-json                  Output results as JSON
//	-junit                 Output results as JUnit XML
//	-protocol-log string   File path for protocol event logging (CBOR format)
//
// Examples:
//
//	# Run every scenario
//	remctl-test -scenarios ./internal/testharness/testdata/scenarios
//
//	# Run the integrity scenarios with verbose output
//	remctl-test -verbose "^TC-INT-"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/remctl-protocol/remctl-go/internal/testharness/reporter"
	"github.com/remctl-protocol/remctl-go/internal/testharness/runner"
	remctllog "github.com/remctl-protocol/remctl-go/pkg/log"
)

var (
	scenarios   = flag.String("scenarios", "./internal/testharness/testdata/scenarios", "Path to the scenario directory")
	timeout     = flag.Duration("timeout", runner.DefaultTimeout, "Per-scenario timeout")
	verbose     = flag.Bool("verbose", false, "Show descriptions and observed outcomes")
	jsonOut     = flag.Bool("json", false, "Output results as JSON")
	junitOut    = flag.Bool("junit", false, "Output results as JUnit XML")
	protocolLog = flag.String("protocol-log", "", "File path for protocol event logging (CBOR format)")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	pattern := ""
	if flag.NArg() > 0 {
		pattern = flag.Arg(0)
	}

	var rep reporter.Reporter
	switch {
	case *jsonOut:
		rep = reporter.NewJSONReporter(os.Stdout, true)
	case *junitOut:
		rep = reporter.NewJUnitReporter(os.Stdout)
	default:
		rep = reporter.NewTextReporter(os.Stdout, *verbose)
		log.SetFlags(log.Ltime)
		log.Printf("Scenarios: %s", *scenarios)
		if pattern != "" {
			log.Printf("Pattern: %s", pattern)
		}
	}

	config := runner.Config{
		ScenarioDir: *scenarios,
		Pattern:     pattern,
		Timeout:     *timeout,
	}

	// Only set the logger when non-nil to avoid a typed-nil interface.
	if *protocolLog != "" {
		protocolLogger, err := remctllog.NewFileLogger(*protocolLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create protocol logger: %v\n", err)
			return 1
		}
		defer protocolLogger.Close()
		config.ProtocolLogger = protocolLogger
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	result, err := runner.New(config).Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	rep.ReportSuite(result)

	if result.FailCount > 0 {
		return 1
	}
	return 0
}
