package core

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrNoFile           = errors.New("no video file selected")
	ErrInvalidFileType  = errors.New("file is not a video")
	ErrFileTooLarge     = errors.New("file exceeds the 2GB limit")
	ErrUploadInProgress = errors.New("an upload is already in progress")
	ErrUploadAborted    = errors.New("upload aborted")
	ErrUploadFinished   = errors.New("upload already finished")
	ErrUploadRejected   = errors.New("upload rejected by video host")
	ErrLoginPending     = errors.New("a login attempt is already pending")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidAddress   = errors.New("invalid ethereum address")
)
