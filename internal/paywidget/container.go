package paywidget

import (
	"html/template"
	"strings"
	"sync"
)

// Container is the element payment buttons are rendered into.
type Container struct {
	mu      sync.Mutex
	buttons []template.HTML
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{}
}

// Append adds one rendered button.
func (c *Container) Append(fragment template.HTML) {
	c.mu.Lock()
	c.buttons = append(c.buttons, fragment)
	c.mu.Unlock()
}

// Clear removes every rendered button.
func (c *Container) Clear() {
	c.mu.Lock()
	c.buttons = nil
	c.mu.Unlock()
}

// Count reports how many buttons are rendered.
func (c *Container) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buttons)
}

// HTML returns the container contents.
func (c *Container) HTML() template.HTML {
	c.mu.Lock()
	defer c.mu.Unlock()
	var b strings.Builder
	for _, f := range c.buttons {
		b.WriteString(string(f))
	}
	return template.HTML(b.String())
}
