package repository

import (
	"github.com/maxviazov/persistence-guard/internal/config"
)

// FromConfig builds a classifier whose allow-list and markers can be tuned without code changes.
func FromConfig(cfg config.ClassifierConfig) *Classifier {
	var opts []Option
	if cfg.DisableDefaults {
		opts = append(opts, WithoutDefaults())
	}
	if len(cfg.SQLStates) > 0 {
		opts = append(opts, WithRules(SQLState(cfg.SQLStates...)))
	}
	if len(cfg.MySQLNumbers) > 0 {
		opts = append(opts, WithRules(MySQLNumbers(cfg.MySQLNumbers...)))
	}
	if len(cfg.SQLiteCodes) > 0 {
		opts = append(opts, WithRules(SQLiteCodes(cfg.SQLiteCodes...)))
	}
	if len(cfg.Markers) > 0 {
		opts = append(opts, WithMarkers(cfg.Markers...))
	}
	return NewClassifier(opts...)
}
