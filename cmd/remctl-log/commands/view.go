// Package commands implements the remctl-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/remctl-protocol/remctl-go/pkg/log"
)

// ViewFilter specifies criteria for the view command.
type ViewFilter struct {
	ConnectionID string
	Layer        *log.Layer
	Direction    *log.Direction
	Category     *log.Category
}

func (f ViewFilter) filter() log.Filter {
	return log.Filter{
		ConnectionID: f.ConnectionID,
		Layer:        f.Layer,
		Direction:    f.Direction,
		Category:     f.Category,
	}
}

// RunView writes every matching event in human-readable form.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.filter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}

// formatEvent writes one event: a header line, details, then a blank line.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s\n",
		ts, shortenConnID(event.ConnectionID), direction(event), event.Layer, eventType(event))

	if event.RemoteAddr != "" || event.Principal != "" {
		fmt.Fprintf(w, "  Server: %s %s\n", event.RemoteAddr, event.Principal)
	}

	switch {
	case event.Token != nil:
		formatTokenDetails(w, event.Token)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// direction is blank for events that carry no token.
func direction(event log.Event) string {
	if event.Token == nil {
		return "-"
	}
	return event.Direction.String()
}

func eventType(event log.Event) string {
	switch {
	case event.Token != nil:
		return "Token " + event.Token.Flag.String()
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatTokenDetails(w io.Writer, token *log.TokenEvent) {
	fmt.Fprintf(w, "  Flag: 0x%02x\n", uint8(token.Flag))
	fmt.Fprintf(w, "  Size: %d bytes\n", token.Size)
	if len(token.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(token.Data))
		if token.Truncated {
			fmt.Fprint(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseLayerFlag parses a layer name (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "session":
		return log.LayerSession, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport or session)", s)
	}
}

// ParseDirectionFlag parses a direction name (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category name (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "token":
		return log.CategoryToken, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be token, state, or error)", s)
	}
}
