package lifecycle

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/cyberwani/metabox/pkg/persist"
	"github.com/cyberwani/metabox/pkg/render"
	"github.com/cyberwani/metabox/pkg/schema"
)

// Event name prefixes. The page name completes them, e.g.
// "edit_screen:post".
const (
	ShowEventPrefix = "edit_screen:"
	SaveEventPrefix = "save_item:"
)

// ShowEvent returns the show event name for a page.
func ShowEvent(page string) string { return ShowEventPrefix + page }

// SaveEvent returns the save event name for a page.
func SaveEvent(page string) string { return SaveEventPrefix + page }

// Registration is the outcome of registering one box on one page. The
// HTTP layer consults it for edit-screen assets, form encoding, and
// which background endpoints the page needs.
type Registration struct {
	BoxID    string
	Page     string
	Context  string
	Priority string

	// Multipart is set when the box carries file or image fields, so
	// the edit form needs multipart encoding and the delete/reorder
	// endpoints must be enabled.
	Multipart bool
	// Pickers is set when the box carries color, date, or time fields.
	// Picker assets load on edit screens only.
	Pickers bool

	Stylesheets []string
	Scripts     []render.Script
}

// Option configures the Controller.
type Option func(*Controller)

// WithAdmin marks the runtime context as an administrative one. A
// controller outside the admin context registers nothing.
func WithAdmin(admin bool) Option {
	return func(c *Controller) { c.admin = admin }
}

// Controller wires normalized boxes into the event table.
type Controller struct {
	dispatcher Dispatcher
	renderer   *render.Renderer
	saver      *persist.Saver
	admin      bool

	mu            sync.RWMutex
	registrations []Registration
}

// NewController builds a controller. Admin defaults to true; embedding
// hosts pass WithAdmin(false) on public-facing processes.
func NewController(dispatcher Dispatcher, renderer *render.Renderer, saver *persist.Saver, options ...Option) *Controller {
	c := &Controller{
		dispatcher: dispatcher,
		renderer:   renderer,
		saver:      saver,
		admin:      true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Register normalizes and validates the box, then subscribes its show
// and save callbacks for every supported page. Outside the admin
// context it does nothing.
func (c *Controller) Register(box schema.BoxDefinition) error {
	if !c.admin {
		return nil
	}

	box = schema.Normalize(box)
	if err := schema.Validate(box); err != nil {
		return fmt.Errorf("lifecycle: register box %q: %w", box.ID, err)
	}

	// One scan over the field types decides encoding, endpoints, and
	// assets for every page the box appears on.
	multipart := box.HasFieldType(schema.FieldTypeFile) || box.HasFieldType(schema.FieldTypeImage)
	pickers := box.HasFieldType(schema.FieldTypeColor) ||
		box.HasFieldType(schema.FieldTypeDate) ||
		box.HasFieldType(schema.FieldTypeTime)
	stylesheets, scripts := c.renderer.BoxAssets(box)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, page := range box.Pages {
		c.registrations = append(c.registrations, Registration{
			BoxID:       box.ID,
			Page:        page,
			Context:     box.Context,
			Priority:    box.Priority,
			Multipart:   multipart,
			Pickers:     pickers,
			Stylesheets: stylesheets,
			Scripts:     scripts,
		})
		c.dispatcher.Subscribe(ShowEvent(page), c.showHandler(box))
		c.dispatcher.Subscribe(SaveEvent(page), c.saveHandler(box))
	}
	return nil
}

// Registrations returns a copy of the registration table.
func (c *Controller) Registrations() []Registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Registration(nil), c.registrations...)
}

// PageRegistrations returns the registrations for one page in
// registration order.
func (c *Controller) PageRegistrations(page string) []Registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Registration
	for _, reg := range c.registrations {
		if reg.Page == page {
			out = append(out, reg)
		}
	}
	return out
}

// PageNeedsMultipart reports whether any box on the page carries
// upload fields.
func (c *Controller) PageNeedsMultipart(page string) bool {
	for _, reg := range c.PageRegistrations(page) {
		if reg.Multipart {
			return true
		}
	}
	return false
}

// PageAssets merges the asset lists of every box on the page,
// preserving first-seen order.
func (c *Controller) PageAssets(page string) (stylesheets []string, scripts []render.Script) {
	seenCSS := make(map[string]struct{})
	seenJS := make(map[string]struct{})
	for _, reg := range c.PageRegistrations(page) {
		for _, css := range reg.Stylesheets {
			if _, dup := seenCSS[css]; dup {
				continue
			}
			seenCSS[css] = struct{}{}
			stylesheets = append(stylesheets, css)
		}
		for _, script := range reg.Scripts {
			if _, dup := seenJS[script.Src]; dup {
				continue
			}
			seenJS[script.Src] = struct{}{}
			scripts = append(scripts, script)
		}
	}
	return stylesheets, scripts
}

func (c *Controller) showHandler(box schema.BoxDefinition) HandlerFunc {
	return func(ctx context.Context, e Event) error {
		if e.Render == nil || e.Render.Out == nil {
			return nil
		}
		markup, err := c.renderer.RenderBox(ctx, box, e.Render.Context)
		if err != nil {
			return err
		}
		_, err = io.WriteString(e.Render.Out, markup)
		return err
	}
}

func (c *Controller) saveHandler(box schema.BoxDefinition) HandlerFunc {
	return func(ctx context.Context, e Event) error {
		if e.Submission == nil || c.saver == nil {
			return nil
		}
		return c.saver.Save(ctx, box, *e.Submission)
	}
}
