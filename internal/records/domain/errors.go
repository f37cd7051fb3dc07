package domain

import "errors"

var (
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrWriteRejected     = errors.New("write rejected")
	ErrNotFound          = errors.New("record not found")
	ErrUploadFailed      = errors.New("upload failed")
	ErrBusy              = errors.New("another submission is in flight")
	ErrInvalidIcon       = errors.New("invalid icon")
	ErrInvalidRecord     = errors.New("invalid record")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrUnknownCollection = errors.New("unknown collection")
)
