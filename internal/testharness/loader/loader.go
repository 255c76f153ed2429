package loader

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ParseScenario parses and validates a scenario from YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		le := &LoadError{Message: "failed to parse YAML", Cause: err}
		var te *yaml.TypeError
		if !errors.As(err, &te) {
			le.Line = yamlErrorLine(err)
		}
		return nil, le
	}

	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if sc.ID == "" {
		return &LoadError{Message: "scenario ID is required"}
	}
	if sc.Expect.Error != "" && !slices.Contains(ErrorKinds, sc.Expect.Error) {
		return &LoadError{Message: "unknown error kind " + sc.Expect.Error}
	}
	if sc.Server.Legs < 0 {
		return &LoadError{Message: "server.legs must not be negative"}
	}
	for _, d := range []string{sc.Timeout, sc.Client.IOTimeout} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return &LoadError{Message: "invalid duration " + d, Cause: err}
		}
	}
	return nil
}

// TimeoutDuration returns the scenario timeout, or def when unset.
func (sc *Scenario) TimeoutDuration(def time.Duration) time.Duration {
	if d, err := time.ParseDuration(sc.Timeout); err == nil && d > 0 {
		return d
	}
	return def
}

// LoadScenario loads a scenario from a file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	sc, err := ParseScenario(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return sc, nil
}

// LoadDirectory loads all scenarios from a directory, in file name order.
// Only files with .yaml or .yml extensions are loaded. Scenario IDs must be
// unique.
func LoadDirectory(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	var scenarios []*Scenario
	seen := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[sc.ID]; dup {
			return nil, &LoadError{File: path, Message: "duplicate scenario ID " + sc.ID + " (also in " + prev + ")"}
		}
		seen[sc.ID] = path
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// yamlErrorLine extracts the line number from a yaml.v3 syntax error
// ("yaml: line 3: ...").
func yamlErrorLine(err error) int {
	msg := err.Error()
	const prefix = "yaml: line "
	if !strings.HasPrefix(msg, prefix) {
		return 0
	}
	n := 0
	for _, c := range msg[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}
