// Package gormguard normalizes gorm statement errors through a callback plugin.
package gormguard

import (
	"fmt"

	"github.com/maxviazov/persistence-guard/internal/repository"
	"gorm.io/gorm"
)

const callbackName = "persistence_guard:normalize"

// Plugin replaces db.Error after each statement with its normalized form.
// Enable gorm.Config.TranslateError to let dialectors map driver codes to gorm sentinels first.
type Plugin struct {
	c *repository.Classifier
}

// New returns the plugin; a nil classifier selects repository.Default().
func New(c *repository.Classifier) *Plugin {
	if c == nil {
		c = repository.Default()
	}
	return &Plugin{c: c}
}

func (p *Plugin) Name() string { return "persistence_guard" }

// Initialize registers the normalizer after the main callback of every processor.
func (p *Plugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []struct {
		after    string
		register func(name string, fn func(*gorm.DB)) error
	}{
		{"gorm:create", cb.Create().After("gorm:create").Register},
		{"gorm:query", cb.Query().After("gorm:query").Register},
		{"gorm:update", cb.Update().After("gorm:update").Register},
		{"gorm:delete", cb.Delete().After("gorm:delete").Register},
		{"gorm:row", cb.Row().After("gorm:row").Register},
		{"gorm:raw", cb.Raw().After("gorm:raw").Register},
	}
	for _, r := range registrations {
		if err := r.register(callbackName, p.normalize); err != nil {
			return fmt.Errorf("register %s after %s: %w", callbackName, r.after, err)
		}
	}
	return nil
}

func (p *Plugin) normalize(db *gorm.DB) {
	if db.Error != nil {
		db.Error = p.c.Normalize(db.Error)
	}
}

var _ gorm.Plugin = (*Plugin)(nil)
