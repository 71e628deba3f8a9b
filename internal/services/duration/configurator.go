package duration

import (
	"fmt"
	"sync"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/credit"
)

const (
	MinDurationDays     = 2
	MaxDurationDays     = 20
	DefaultDurationDays = 7
	DefaultRunHour      = 9
)

// Configurator holds the multi-day inputs of the campaign start form and
// forwards the resulting DurationConfig to its owner. It never talks to the network.
type Configurator struct {
	mu           sync.Mutex
	enabled      bool
	durationDays int
	runHour      int
	onChange     func(*models.DurationConfig)
}

// NewConfigurator creates a configurator with multi-day disabled.
// onChange may be nil.
func NewConfigurator(onChange func(*models.DurationConfig)) *Configurator {
	return &Configurator{
		durationDays: DefaultDurationDays,
		runHour:      DefaultRunHour,
		onChange:     onChange,
	}
}

// SetEnabled toggles multi-day mode
func (c *Configurator) SetEnabled(enabled bool) {
	c.mu.Lock()
	if c.enabled == enabled {
		c.mu.Unlock()
		return
	}
	c.enabled = enabled
	c.emitLocked()
}

// SetDurationDays updates the number of days; out-of-range values are rejected
func (c *Configurator) SetDurationDays(days int) error {
	if days < MinDurationDays || days > MaxDurationDays {
		return fmt.Errorf("duration must be between %d and %d days, got %d", MinDurationDays, MaxDurationDays, days)
	}

	c.mu.Lock()
	if c.durationDays == days {
		c.mu.Unlock()
		return nil
	}
	c.durationDays = days
	c.emitLocked()
	return nil
}

// SetPreferredRunHour updates the local hour the daily run is dispatched at
func (c *Configurator) SetPreferredRunHour(hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("preferred run hour must be between 0 and 23, got %d", hour)
	}

	c.mu.Lock()
	if c.runHour == hour {
		c.mu.Unlock()
		return nil
	}
	c.runHour = hour
	c.emitLocked()
	return nil
}

// Config returns the current configuration, or nil when multi-day is disabled
func (c *Configurator) Config() *models.DurationConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.configLocked()
}

// Preview projects the campaign cost and compares it to the user's balance.
// A nil balance means the balance is still loading.
func (c *Configurator) Preview(contactsPerDay, enrichCreditsPerContact int, balance *int) models.CostPreview {
	cfg := c.Config()

	days := 1
	if cfg != nil {
		days = cfg.DurationDays
	}
	calc := credit.Compute(contactsPerDay, enrichCreditsPerContact, days)

	preview := models.CostPreview{
		DurationConfig: cfg,
		Calculation:    calc,
		Coverage:       models.BalanceCoverageLoading,
	}
	if balance == nil {
		return preview
	}

	b := *balance
	preview.Balance = &b
	if b >= calc.TotalCredits {
		preview.Coverage = models.BalanceCoverageSufficient
	} else {
		preview.Coverage = models.BalanceCoverageInsufficient
		preview.Shortfall = calc.TotalCredits - b
	}
	return preview
}

func (c *Configurator) configLocked() *models.DurationConfig {
	if !c.enabled {
		return nil
	}
	return &models.DurationConfig{
		DurationDays:     c.durationDays,
		PreferredRunHour: c.runHour,
	}
}

// emitLocked releases the lock before calling the owner so it may read back
func (c *Configurator) emitLocked() {
	cfg := c.configLocked()
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(cfg)
	}
}

// Build returns a configurator pre-filled from a submitted form.
// Day and hour are only validated when multi-day is on.
func Build(multiDay bool, days, hour int) (*Configurator, error) {
	c := NewConfigurator(nil)
	if !multiDay {
		return c, nil
	}
	if err := c.SetDurationDays(days); err != nil {
		return nil, err
	}
	if err := c.SetPreferredRunHour(hour); err != nil {
		return nil, err
	}
	c.SetEnabled(true)
	return c, nil
}
