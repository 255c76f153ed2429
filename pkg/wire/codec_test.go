package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestCommandRequestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		args [][]byte
	}{
		{name: "empty", args: [][]byte{}},
		{name: "single", args: [][]byte{[]byte("status")}},
		{name: "several", args: [][]byte{[]byte("service"), []byte("restart"), []byte("httpd")}},
		{name: "empty argument", args: [][]byte{[]byte("a"), {}, []byte("c")}},
		{name: "binary", args: [][]byte{{0x00, 0xFF, 0x7F, 0x80}, bytes.Repeat([]byte{0}, 300)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &CommandRequest{Args: tt.args}
			data, err := req.Encode()
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if len(data) != req.EncodedSize() {
				t.Errorf("encoded size = %d, want %d", len(data), req.EncodedSize())
			}

			got, err := DecodeCommandRequest(data)
			if err != nil {
				t.Fatalf("DecodeCommandRequest failed: %v", err)
			}
			if len(got.Args) != len(tt.args) {
				t.Fatalf("arg count = %d, want %d", len(got.Args), len(tt.args))
			}
			for i := range tt.args {
				if !bytes.Equal(got.Args[i], tt.args[i]) {
					t.Errorf("arg %d = %x, want %x", i, got.Args[i], tt.args[i])
				}
			}
		})
	}
}

func TestCommandRequestEncodingLayout(t *testing.T) {
	data, err := StringArgs("ab", "c").Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := []byte{
		0, 0, 0, 2,
		0, 0, 0, 2, 'a', 'b',
		0, 0, 0, 1, 'c',
	}
	if !bytes.Equal(data, want) {
		t.Errorf("encoding = %x, want %x", data, want)
	}
}

func TestEmptyCommandRequest(t *testing.T) {
	data, err := (&CommandRequest{}).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(data, []byte{0, 0, 0, 0}) {
		t.Errorf("encoding = %x, want 00000000", data)
	}

	got, err := DecodeCommandRequest(data)
	if err != nil {
		t.Fatalf("DecodeCommandRequest failed: %v", err)
	}
	if len(got.Args) != 0 {
		t.Errorf("args = %v, want none", got.Args)
	}
}

func TestDecodeCommandRequestMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short count", data: []byte{0, 0, 1}},
		{name: "count exceeds data", data: []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{name: "length past end", data: []byte{0, 0, 0, 1, 0, 0, 0, 9, 'x'}},
		{name: "missing argument", data: []byte{0, 0, 0, 2, 0, 0, 0, 1, 'x'}},
		{name: "trailing bytes", data: []byte{0, 0, 0, 0, 'x'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCommandRequest(tt.data)
			if !errors.Is(err, ErrProtocol) {
				t.Errorf("error = %v, want ErrProtocol", err)
			}
		})
	}
}

func TestCommandResponseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		resp CommandResponse
	}{
		{name: "ok", resp: CommandResponse{Status: 0, Message: []byte("ok")}},
		{name: "failure", resp: CommandResponse{Status: 1, Message: []byte("permission denied\n")}},
		{name: "negative status", resp: CommandResponse{Status: -1, Message: []byte{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.resp.Encode()
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			got, err := DecodeCommandResponse(data)
			if err != nil {
				t.Fatalf("DecodeCommandResponse failed: %v", err)
			}
			if got.Status != tt.resp.Status {
				t.Errorf("Status = %d, want %d", got.Status, tt.resp.Status)
			}
			if got.Text() != string(tt.resp.Message) {
				t.Errorf("Text = %q, want %q", got.Text(), tt.resp.Message)
			}
		})
	}
}

func TestDecodeCommandResponseMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "status only", data: []byte{0, 0, 0, 0}},
		{name: "length past end", data: []byte{0, 0, 0, 0, 0, 0, 0, 3, 'o', 'k'}},
		{name: "trailing bytes", data: []byte{0, 0, 0, 0, 0, 0, 0, 1, 'o', 'k'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCommandResponse(tt.data)
			if !errors.Is(err, ErrProtocol) {
				t.Errorf("error = %v, want ErrProtocol", err)
			}
		})
	}
}
