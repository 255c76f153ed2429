//go:build tools

package tools

// Mocks in pkg/gss/mocks are generated with mockery (see .mockery.yaml).
// Run: go run github.com/vektra/mockery/v2
import (
	_ "github.com/vektra/mockery/v2"
)
