// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-kvgateway.
//
// go-kvgateway is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package server

import (
	"fmt"

	"github.com/jeremyhahn/go-kvgateway/internal/config"
	"github.com/jeremyhahn/go-kvgateway/pkg/logging"
)

// Reload applies the parts of cfg that can change without a restart.
// Currently only logging is reloaded; listener, TLS and protocol changes
// are reported and ignored until the next restart.
func (s *Server) Reload(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("server: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Reloading server configuration...")

	if err := s.reloadLogging(cfg.Logging); err != nil {
		return fmt.Errorf("failed to reload logging configuration: %w", err)
	}

	if cfg.Server != s.config.Server || cfg.Protocols != s.config.Protocols {
		s.logger.Warn("Listener or protocol changes require a restart")
	}

	s.config.Logging = cfg.Logging
	s.logger.Info("Server configuration reloaded successfully")
	return nil
}

func (s *Server) reloadLogging(next config.LoggingConfig) error {
	prev := s.config.Logging
	if next == prev {
		return nil
	}

	logger, err := s.buildLogger(next)
	if err != nil {
		return err
	}

	s.logger.Info("Updating logging configuration",
		logging.String("old_level", prev.Level),
		logging.String("new_level", next.Level),
		logging.String("old_format", prev.Format),
		logging.String("new_format", next.Format))

	s.logger.swap(logger)

	s.logger.Info("Logging configuration updated",
		logging.String("level", next.Level),
		logging.String("format", next.Format),
		logging.String("backend", next.Backend))
	return nil
}
