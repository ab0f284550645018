package common

import (
	"context"

	"github.com/one-of-one-tools/marketsync/src/utils/config"
)

type contextKey struct{}

var configKey = contextKey{}

// SetConfig stores the global configuration in the context
func SetConfig(ctx context.Context, config *config.Config) context.Context {
	return context.WithValue(ctx, configKey, config)
}

// GetConfig retrieves the global configuration from the context
func GetConfig(ctx context.Context) *config.Config {
	conf, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		return nil
	}
	return conf
}
