package round

// Round is one step of a protocol execution.
type Round interface {
	// VerifyMessage handles an incoming Message and validates its content for the current round.
	// The content argument can be cast to the appropriate type for this round without error check.
	// This function should not modify any saved state as it may be running concurrently.
	VerifyMessage(msg Message) error

	// StoreMessage should be called after VerifyMessage and should only store the appropriate fields from the
	// content.
	StoreMessage(msg Message) error

	// Finalize is called after all messages from the parties have been processed in the current round.
	// Messages for the next round are sent out through the out channel.
	// If a non-critical error occurs (like a failure to sample, hash, or send a message), the current round can be
	// returned so that the caller may try to finalize again.
	//
	// When the protocol is aborted, Helper.AbortRound should be returned, and in the last round
	// Helper.ResultRound.
	Finalize(out chan<- *Message) (Session, error)

	// MessageContent returns an uninitialized message.Content for this round.
	//
	// The first round of a protocol should return nil.
	MessageContent() Content

	// Number returns the current round number.
	Number() Number
}
