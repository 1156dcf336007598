package configuration

import (
	"context"
	"os"
	"path/filepath"

	"github.com/identinet/did-web-server/pkg/helpers"
	"github.com/identinet/did-web-server/pkg/logger"
	"github.com/identinet/did-web-server/pkg/model"

	"github.com/creasty/defaults"
	"github.com/kelseyhightower/envconfig"
)

// New reads the configuration from the environment
func New(ctx context.Context) (*model.Cfg, error) {
	log := logger.NewSimple("Configuration")
	log.Info("Read environmental variables")

	cfg := &model.Cfg{}

	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}

	if cfg.BackendFileStore == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cfg.BackendFileStore = filepath.Join(wd, "did_store")
	}

	if cfg.Owner == "" {
		return nil, helpers.ErrOwnerMissing
	}

	if err := helpers.Check(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
