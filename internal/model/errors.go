package model

import "errors"

var ErrNoRecord = errors.New("no record")
var ErrAlreadyExists = errors.New("entity already exists")

// ErrNotificationTypeDoesNotExist means a channel identifier outside the
// recognized set leaked into storage or a request.
var ErrNotificationTypeDoesNotExist = errors.New("notification type does not exist")

// ErrProviderNotAvailable means the channel is valid but no app has
// registered a provider for it; callers should skip, not fail.
var ErrProviderNotAvailable = errors.New("notification provider not available")
