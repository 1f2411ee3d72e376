package worker

import "github.com/google/wire"

// ProviderSet is worker providers.
var ProviderSet = wire.NewSet(
	NewPool,
	NewSweeper,
)
