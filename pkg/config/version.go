package config

// Version is overridden at build time with -ldflags "-X github.com/athlink/cli/pkg/config.Version=..."
var Version = "0.1.0"
