package svc

import "errors"

// ErrStorageInitFailed: an enabled storage backend could not be opened.
var ErrStorageInitFailed = errors.New("storage initialization failed")

// ErrEmptyCatalogue: neither market has a single coin to watch.
var ErrEmptyCatalogue = errors.New("symbol catalogue empty for both markets")
