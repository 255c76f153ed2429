// Package wire defines the remctl protocol version 1 wire format.
//
// Every unit on the connection is a token:
//
//	Token := flag:uint8 length:uint32 payload:byte[length]
//
// All multi-byte integers are big-endian. The flag is a bitmask of one
// token kind (NOOP, CONTEXT, DATA, MIC) plus optional modifiers
// (CONTEXT-NEXT, SEND-MIC).
//
// # Exchange
//
//	client -> server  NOOP|CONTEXT-NEXT (empty)
//	client <-> server CONTEXT ... until the security context is established
//	client -> server  DATA|SEND-MIC     wrap(CommandRequest)
//	server -> client  MIC               getMIC(CommandRequest)
//	server -> client  DATA              wrap(CommandResponse)
//	client -> server  MIC               getMIC(CommandResponse)
//
// # Messages
//
// The plaintext carried inside DATA tokens is one of:
//
//	CommandRequest  := argCount:uint32 { argLen:uint32 argBytes:byte[argLen] }*
//	CommandResponse := status:int32 msgLen:uint32 msgBytes:byte[msgLen]
//
// Arguments are opaque byte strings; their order is significant.
package wire
