package data

import (
	"modqueue/internal/conf"
	"modqueue/internal/pkg/provider"

	"github.com/go-kratos/kratos/v2/log"
)

// NewModerationProvider builds the provider chain from config: a primary
// client with a short call bound, falling back to the secondary on failure.
func NewModerationProvider(mc *conf.Moderation, logger log.Logger) provider.Client {
	helper := log.NewHelper(logger)

	primaryCfg := provider.DefaultConfig(mc.Primary.BaseURL)
	primaryCfg.APIKey = mc.Primary.APIKey
	primaryCfg.Timeout = conf.ParseDuration(mc.Primary.Timeout, primaryCfg.Timeout)
	primary := provider.NewHTTPClient(primaryCfg)

	if mc.Fallback.BaseURL == "" {
		helper.Warn("no fallback moderation provider configured")
		return primary
	}

	fallbackCfg := provider.DefaultConfig(mc.Fallback.BaseURL)
	fallbackCfg.APIKey = mc.Fallback.APIKey
	fallbackCfg.Timeout = conf.ParseDuration(mc.Fallback.Timeout, fallbackCfg.Timeout)
	fallback := provider.NewHTTPClient(fallbackCfg)

	helper.Infof("moderation providers configured: primary=%s fallback=%s",
		mc.Primary.BaseURL, mc.Fallback.BaseURL)

	return provider.NewFallbackClient(primary, fallback, logger)
}
