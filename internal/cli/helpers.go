package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/rigour-dev/rigour/internal/config"
	"github.com/rigour-dev/rigour/internal/logging"
)

// loadResolvedConfig finds and parses rigour.toml (honoring --config),
// validates it, and resolves the final configuration from defaults, file,
// environment, and CLI overrides. Validation errors abort; warnings are
// logged and the run continues.
func loadResolvedConfig(overrides *config.CLIOverrides) (*config.ResolvedConfig, error) {
	logger := logging.New("config")

	path := flagConfig
	if path == "" {
		found, err := config.FindConfigFile(".")
		if err != nil {
			return nil, err
		}
		path = found
	}

	var (
		fileCfg *config.Config
		meta    toml.MetaData
	)
	if path != "" {
		var err error
		fileCfg, meta, err = config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded config file", "path", path)
	}

	rc := config.Resolve(config.NewDefaults(), fileCfg, os.LookupEnv, overrides)
	rc.Path = path

	vr := config.Validate(rc.Config, metaPtr(fileCfg, meta))
	for _, w := range vr.Warnings() {
		logger.Warn(w.Message, "field", w.Field)
	}
	if vr.HasErrors() {
		var msgs []string
		for _, e := range vr.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
		}
		return nil, fmt.Errorf("invalid configuration:\n  %s", strings.Join(msgs, "\n  "))
	}

	return rc, nil
}

// metaPtr returns the TOML metadata only when a file was actually parsed,
// so unknown-key detection does not run against empty metadata.
func metaPtr(fileCfg *config.Config, meta toml.MetaData) *toml.MetaData {
	if fileCfg == nil {
		return nil
	}
	return &meta
}
