package config

import (
	"time"

	"github.com/terminus-io/hccdu/pkg/quota/lustre"
	"github.com/terminus-io/hccdu/pkg/threshold"
	"k8s.io/klog/v2"
)

const (
	defaultSite         = "HCC"
	defaultMessage      = "**ATTENTION** Please clean what you can from /work **ATTENTION**"
	defaultPurgeDir     = "/lustre/purge/current"
	defaultFetchTimeout = 10 * time.Second
)

func defaultMounts() []MountConfig {
	return []MountConfig{
		{Name: "home", Backend: BackendRQuota, Home: true},
		{Name: "work", Path: "/lustre", Backend: BackendLustre},
	}
}

// Default is the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills every zero field.
func (c *Config) SetDefaults() {
	if c.Site == "" {
		c.Site = defaultSite
	}
	if len(c.Mounts) == 0 {
		c.Mounts = defaultMounts()
	}
	if c.Thresholds == (threshold.Config{}) {
		c.Thresholds = threshold.DefaultConfig()
	}
	if c.Login.Message == "" {
		c.Login.Message = defaultMessage
	}
	if c.Login.RemediationMount == "" {
		c.Login.RemediationMount = "work"
		if _, ok := c.Mount("work"); !ok {
			c.Login.RemediationMount = c.Mounts[len(c.Mounts)-1].Name
			klog.V(2).InfoS("No work mount configured, using last mount for remediation", "mount", c.Login.RemediationMount)
		}
	}
	if c.GroupHelper == "" {
		c.GroupHelper = lustre.DefaultGroupHelper
	}
	if c.PurgeDir == "" {
		c.PurgeDir = defaultPurgeDir
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
}
