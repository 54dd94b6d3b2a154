package svc

import "errors"

// ErrNoWatchedCoins: the watch list resolved to nothing usable.
var ErrNoWatchedCoins = errors.New("no watched coins configured")

// ErrStorageInitFailed: a configured storage backend could not be opened.
var ErrStorageInitFailed = errors.New("storage initialization failed")
