package core

import (
	errorsmod "cosmossdk.io/errors"
)

const Codespace = "aerorelay"

var (
	// ErrConnection is returned when the source chain RPC endpoint cannot be reached.
	ErrConnection = errorsmod.Register(Codespace, 2, "connection error")
	// ErrHeightFetch is returned when the current height of the source chain cannot be fetched.
	ErrHeightFetch = errorsmod.Register(Codespace, 3, "height fetch error")
	// ErrBlockResults is returned when the block results of a height cannot be fetched.
	ErrBlockResults = errorsmod.Register(Codespace, 4, "block results fetch error")
	// ErrDecode is returned when a channel event cannot be decoded into a packet.
	ErrDecode = errorsmod.Register(Codespace, 5, "packet decode error")
	// ErrInvalidPacket is returned when a decoded packet cannot be turned into a wire packet.
	ErrInvalidPacket = errorsmod.Register(Codespace, 6, "invalid packet")
	// ErrProof is returned when the proof provider fails to prove a packet.
	ErrProof = errorsmod.Register(Codespace, 7, "proof generation error")
	// ErrConfig is returned for a malformed relay pair.
	ErrConfig = errorsmod.Register(Codespace, 8, "configuration error")
	// ErrDelivery is returned when a built message cannot be handed to the sink.
	ErrDelivery = errorsmod.Register(Codespace, 9, "message delivery error")
	// ErrCursor is returned when the cursor would move backwards.
	ErrCursor = errorsmod.Register(Codespace, 10, "cursor error")
	// ErrCheckpoint is returned when the checkpoint store fails.
	ErrCheckpoint = errorsmod.Register(Codespace, 11, "checkpoint error")
)
