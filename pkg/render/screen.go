package render

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	rendertemplate "github.com/cyberwani/metabox/pkg/render/template"
	"github.com/cyberwani/metabox/pkg/schema"
	"github.com/cyberwani/metabox/pkg/token"
)

// ScreenConfig points the rendered edit screen at the host's routes.
type ScreenConfig struct {
	// Action is the form submission URL.
	Action string
	// AssetBase is the URL prefix the embedded assets are mounted at.
	AssetBase string
	// DeleteEndpoint and ReorderEndpoint are the background endpoints
	// the client script posts pipe-delimited payloads to.
	DeleteEndpoint  string
	ReorderEndpoint string
	// MediaEndpoint opens the media picker for image fields.
	MediaEndpoint string
}

var (
	screenEngineOnce sync.Once
	screenEngine     *rendertemplate.Engine
	screenEngineErr  error
)

func defaultScreenEngine() (*rendertemplate.Engine, error) {
	screenEngineOnce.Do(func() {
		screenEngine, screenEngineErr = rendertemplate.New(
			rendertemplate.WithFS(TemplatesFS()),
			rendertemplate.WithExtension(".tmpl"),
		)
	})
	return screenEngine, screenEngineErr
}

// RenderScreen renders a complete edit screen for the box: page
// chrome, the submit token, the field table, and the asset includes
// for the field types the box actually contains. Multipart encoding is
// enabled only when an upload-capable field is present.
func (r *Renderer) RenderScreen(ctx context.Context, box schema.BoxDefinition, rc Context, cfg ScreenConfig) (string, error) {
	engine, err := defaultScreenEngine()
	if err != nil {
		return "", fmt.Errorf("render: screen template engine: %w", err)
	}

	boxHTML, err := r.RenderBox(ctx, box, rc)
	if err != nil {
		return "", err
	}

	stylesheets, scripts := r.BoxAssets(box)

	submitToken := ""
	if rc.Tokens != nil {
		submitToken = rc.Tokens.Issue(token.ScopeSubmit, token.ItemSubject(rc.ItemID))
	}

	return engine.RenderTemplate("templates/screen", map[string]any{
		"box_id":           box.ID,
		"box_title":        box.Title,
		"box_context":      box.Context,
		"box_html":         boxHTML,
		"item_id":          strconv.FormatInt(rc.ItemID, 10),
		"item_type":        rc.ItemType,
		"action":           cfg.Action,
		"asset_base":       cfg.AssetBase,
		"delete_endpoint":  cfg.DeleteEndpoint,
		"reorder_endpoint": cfg.ReorderEndpoint,
		"media_endpoint":   cfg.MediaEndpoint,
		"multipart":        box.HasFieldType(schema.FieldTypeFile, schema.FieldTypeImage),
		"submit_token":     submitToken,
		"stylesheets":      stylesheets,
		"scripts":          scripts,
	})
}
