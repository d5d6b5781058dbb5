package bingo

import "errors"

// ErrAlreadyClaimed is reported when the server refuses a claim because
// another user got to the ticket first.
var ErrAlreadyClaimed = errors.New("bingo: ticket already claimed")
