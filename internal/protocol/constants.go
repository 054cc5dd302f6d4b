package protocol

const (
	// Known symbols
	symbolArray   = '*'
	symbolInteger = ':'

	// CRLF
	separatorCRLF = "\r\n"

	// TokenReady is written once by the recorder right after the rendezvous.
	TokenReady = "ping"
	// TokenAck is written by the recorder after each batch is durably appended.
	TokenAck = "updated"
)
