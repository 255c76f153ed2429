// Package loader provides YAML scenario loading for the remctl test harness.
package loader

import "strconv"

// Scenario is one client/server exchange loaded from YAML.
type Scenario struct {
	// ID is the unique scenario identifier (e.g., "TC-HS-001").
	ID string `yaml:"id"`

	// Name is a human-readable name for the scenario.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Server configures the responder.
	Server ServerSpec `yaml:"server"`

	// Client configures the remctl client.
	Client ClientSpec `yaml:"client"`

	// Command is the argument vector sent by the client.
	Command []string `yaml:"command"`

	// Expect is the outcome the client must observe.
	Expect Expectation `yaml:"expect"`

	// Timeout is the maximum duration for the scenario (e.g., "5s").
	Timeout string `yaml:"timeout,omitempty"`

	// Tags for categorizing scenarios.
	Tags []string `yaml:"tags,omitempty"`
}

// ServerSpec selects the handshake shape and injected faults.
type ServerSpec struct {
	Legs       int  `yaml:"legs,omitempty"`
	Unilateral bool `yaml:"unilateral,omitempty"`
	ConfirmLeg bool `yaml:"confirm_leg,omitempty"`
	ForgeProof bool `yaml:"forge_proof,omitempty"`

	SkipCommandMIC      bool `yaml:"skip_command_mic,omitempty"`
	CorruptCommandMIC   bool `yaml:"corrupt_command_mic,omitempty"`
	CorruptResponse     bool `yaml:"corrupt_response,omitempty"`
	IntegrityOnly       bool `yaml:"integrity_only,omitempty"`
	MalformedResponse   bool `yaml:"malformed_response,omitempty"`
	StallAfterHandshake bool `yaml:"stall_after_handshake,omitempty"`

	// ResponseFlag and ContextFlag override token flags (0 keeps the default).
	ResponseFlag uint8 `yaml:"response_flag,omitempty"`
	ContextFlag  uint8 `yaml:"context_flag,omitempty"`

	// Reply, when set, is returned for every command instead of the
	// default status handler.
	Reply *Reply `yaml:"reply,omitempty"`
}

// Reply is a fixed command response.
type Reply struct {
	Status  int32  `yaml:"status"`
	Message string `yaml:"message"`
}

// ClientSpec adjusts the client configuration.
type ClientSpec struct {
	// Principal overrides the server principal (default: the responder's).
	Principal string `yaml:"principal,omitempty"`

	OptionalRequestMIC bool   `yaml:"optional_request_mic,omitempty"`
	MaxContextRounds   int    `yaml:"max_context_rounds,omitempty"`
	IOTimeout          string `yaml:"io_timeout,omitempty"`
}

// Expectation is the client-side result.
type Expectation struct {
	// Error names the expected error kind; empty expects success.
	Error string `yaml:"error,omitempty"`

	// Status and Message are checked on success.
	Status  int32   `yaml:"status"`
	Message *string `yaml:"message,omitempty"`
}

// Known error kind names for Expectation.Error.
var ErrorKinds = []string{
	"protocol_io",
	"protocol",
	"mutual_authentication",
	"integrity",
	"security_context",
}

// LoadError provides details about a scenario loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Line is the line number where the error occurred (0 if unknown).
	Line int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return e.File + ":" + strconv.Itoa(e.Line) + ": " + e.Message
	}
	return e.File + ": " + e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
