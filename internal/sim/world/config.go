package world

import "fmt"

type WorldConfig struct {
	ID     string
	Width  int
	Height int
	Seed   int64
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "factory_1"
	}
	if c.Width == 0 {
		c.Width = 20
	}
	if c.Height == 0 {
		c.Height = 15
	}
	if c.Seed == 0 {
		c.Seed = 7
	}
}

func (c *WorldConfig) validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("grid %dx%d: dimensions must not be negative", c.Width, c.Height)
	}
	if c.Width > 0 && c.Width < 4 {
		return fmt.Errorf("grid width %d: need at least 4 columns for source and sink", c.Width)
	}
	return nil
}
