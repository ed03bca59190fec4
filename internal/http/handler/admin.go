package handler

import (
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/sirupsen/logrus"

	"github.com/cyberwani/metabox/internal/attachment"
	"github.com/cyberwani/metabox/internal/store"
	"github.com/cyberwani/metabox/pkg/lifecycle"
	"github.com/cyberwani/metabox/pkg/persist"
	"github.com/cyberwani/metabox/pkg/render"
	"github.com/cyberwani/metabox/pkg/schema"
	"github.com/cyberwani/metabox/pkg/token"
)

// Route paths for the admin surface. The client script receives the
// ajax endpoints through the rendered screen config.
const (
	EditPath         = "/admin/edit/:page/:item"
	SavePath         = "/admin/save/:page/:item"
	DeleteFilePath   = "/admin/ajax/delete-file"
	ReorderPath      = "/admin/ajax/reorder-images"
	MediaInsertPath  = "/admin/media/insert"
	AssetsPathPrefix = "/admin/assets"
)

// AdminConfig carries the collaborators of the admin routes.
type AdminConfig struct {
	Controller  *lifecycle.Controller
	Events      *lifecycle.EventTable
	Boxes       []schema.BoxDefinition
	Renderer    *render.Renderer
	Tokens      *token.Service
	Attachments *attachment.Service
	Meta        store.MetaStore
	Logger      logrus.FieldLogger
}

type adminHandler struct {
	AdminConfig
}

// RegisterRoutes attaches the admin surface to the Fiber app: the edit
// screen, the save endpoint, the two background ajax endpoints, the
// media-picker bridge, and the embedded client assets.
func RegisterRoutes(app *fiber.App, cfg AdminConfig) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	h := &adminHandler{AdminConfig: cfg}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Get(EditPath, h.editScreen)
	app.Post(SavePath, h.save)
	app.Post(DeleteFilePath, h.deleteFile)
	app.Post(ReorderPath, h.reorderImages)
	app.Post(MediaInsertPath, h.mediaInsert)

	app.Use(AssetsPathPrefix, filesystem.New(filesystem.Config{
		Root: http.FS(render.AssetsFS()),
	}))
}

func (h *adminHandler) renderContext(itemID int64, page string) render.Context {
	return render.Context{
		ItemID:      itemID,
		ItemType:    page,
		Values:      h.Meta,
		Attachments: h.Attachments,
		Tokens:      h.Tokens,
	}
}

func (h *adminHandler) pageBox(page, boxID string) *schema.BoxDefinition {
	for i := range h.Boxes {
		if !h.Boxes[i].SupportsPage(page) {
			continue
		}
		if boxID == "" || h.Boxes[i].ID == boxID {
			return &h.Boxes[i]
		}
	}
	return nil
}

// editScreen renders the edit screen of one box for a content item.
// The box query parameter picks among the page's boxes; it defaults to
// the first one.
func (h *adminHandler) editScreen(c *fiber.Ctx) error {
	page := c.Params("page")
	itemID, err := strconv.ParseInt(c.Params("item"), 10, 64)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ITEM", "invalid item id")
	}

	box := h.pageBox(page, c.Query("box"))
	if box == nil {
		return writeError(c, fiber.StatusNotFound, "NO_BOX", "no box registered for this page")
	}

	markup, err := h.Renderer.RenderScreen(c.UserContext(), *box, h.renderContext(itemID, page), render.ScreenConfig{
		Action:          "/admin/save/" + page + "/" + c.Params("item"),
		AssetBase:       AssetsPathPrefix,
		DeleteEndpoint:  DeleteFilePath,
		ReorderEndpoint: ReorderPath,
		MediaEndpoint:   MediaInsertPath,
	})
	if err != nil {
		h.Logger.WithError(err).Error("failed to render edit screen")
		return writeError(c, fiber.StatusInternalServerError, "RENDER_FAILED", "internal server error")
	}
	return c.Type("html").SendString(markup)
}

// save parses the submission and fires the page's save event. Every
// box registered on the page runs its own guard chain, so a stray or
// stale submission falls through silently.
func (h *adminHandler) save(c *fiber.Ctx) error {
	page := c.Params("page")
	itemID, err := strconv.ParseInt(c.Params("item"), 10, 64)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ITEM", "invalid item id")
	}

	sub := persist.Submission{
		ItemID:   itemID,
		ItemType: page,
		Values:   make(map[string][]string),
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for key, values := range form.Value {
			sub.Values[fieldKey(key)] = values
		}
		collectUploads(&sub, form.File)
		defer closeUploads(sub.Uploads)
	} else {
		args := c.Context().PostArgs()
		args.VisitAll(func(key, value []byte) {
			k := fieldKey(string(key))
			sub.Values[k] = append(sub.Values[k], string(value))
		})
	}

	if v := sub.Values["metabox_token"]; len(v) > 0 {
		sub.Token = v[0]
	}
	if v := sub.Values["autosave"]; len(v) > 0 && v[0] == "1" {
		sub.Autosave = true
	}

	if err := h.Events.Fire(c.UserContext(), lifecycle.Event{
		Name:       lifecycle.SaveEvent(page),
		ItemID:     itemID,
		ItemType:   page,
		Submission: &sub,
	}); err != nil {
		h.Logger.WithError(err).Error("save event failed")
		return writeError(c, fiber.StatusInternalServerError, "SAVE_FAILED", "internal server error")
	}

	return c.Redirect("/admin/edit/"+page+"/"+c.Params("item"), fiber.StatusSeeOther)
}

// deleteFile handles the background delete request. The body carries a
// single pipe-delimited payload: attachmentID|itemID|fieldID|token.
// Responses are byte-exact: empty when the payload is missing, "0" on
// success, "1" on any guard or execution failure.
func (h *adminHandler) deleteFile(c *fiber.Ctx) error {
	payload := c.FormValue("data")
	if payload == "" {
		return c.SendString("")
	}

	parts := strings.Split(payload, "|")
	if len(parts) != 4 {
		return c.SendString("1")
	}
	attachmentID, err1 := strconv.ParseInt(parts[0], 10, 64)
	itemID, err2 := strconv.ParseInt(parts[1], 10, 64)
	fieldID, reqToken := parts[2], parts[3]
	if err1 != nil || err2 != nil {
		return c.SendString("1")
	}

	if !h.Tokens.Verify(reqToken, token.ScopeDelete, token.FieldSubject(itemID, fieldID)) {
		return c.SendString("1")
	}
	if err := h.Attachments.Delete(c.UserContext(), attachmentID, itemID, fieldID); err != nil {
		h.Logger.WithError(err).WithField("attachment", attachmentID).Warn("delete-file failed")
		return c.SendString("1")
	}
	return c.SendString("0")
}

// reorderImages handles the background reorder request. The payload is
// serializedOrder|itemID|fieldID|token where serializedOrder is the
// query-encoded item[] list from the drag widget.
func (h *adminHandler) reorderImages(c *fiber.Ctx) error {
	payload := c.FormValue("data")
	if payload == "" {
		return c.SendString("")
	}

	parts := strings.Split(payload, "|")
	if len(parts) != 4 {
		return c.SendString("1")
	}
	order, fieldID, reqToken := parts[0], parts[2], parts[3]
	itemID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return c.SendString("1")
	}

	if !h.Tokens.Verify(reqToken, token.ScopeReorder, token.FieldSubject(itemID, fieldID)) {
		return c.SendString("1")
	}

	// An authenticated request with nothing to reorder is a no-op,
	// not a denial.
	ids := parseOrder(order)
	if len(ids) == 0 {
		return c.SendString("0")
	}
	if err := h.Attachments.Reorder(c.UserContext(), itemID, fieldID, ids); err != nil {
		h.Logger.WithError(err).WithField("field", fieldID).Warn("reorder-images failed")
		return c.SendString("1")
	}
	return c.SendString("0")
}

// mediaInsert is the media-picker bridge: given the target item and
// field plus the picked attachment ids, it answers with the list-item
// markup the client appends to the image list.
func (h *adminHandler) mediaInsert(c *fiber.Ctx) error {
	itemID, err := strconv.ParseInt(c.FormValue("item_id"), 10, 64)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ITEM", "invalid item id")
	}
	fieldID := c.FormValue("field_id")
	if fieldID == "" {
		return writeError(c, fiber.StatusBadRequest, "INVALID_FIELD", "field id is required")
	}

	picked := make(map[int64]struct{})
	args := c.Context().PostArgs()
	for _, raw := range args.PeekMulti("selected[]") {
		if id, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			picked[id] = struct{}{}
		}
	}

	available, err := h.Attachments.ForField(c.UserContext(), itemID, fieldID)
	if err != nil {
		h.Logger.WithError(err).Warn("media insert listing failed")
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	selections := make(map[int64]render.MediaSelection, len(available))
	for _, att := range available {
		_, ok := picked[att.ID]
		selections[att.ID] = render.MediaSelection{Selected: ok, URL: att.URL}
	}

	return c.Type("html").SendString(render.InsertImages(itemID, fieldID, selections, h.Tokens))
}

// fieldKey strips the trailing [] from multi-value form names.
func fieldKey(name string) string {
	return strings.TrimSuffix(name, "[]")
}

func collectUploads(sub *persist.Submission, files map[string][]*multipart.FileHeader) {
	for key, headers := range files {
		field := fieldKey(key)
		for i, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				continue
			}
			sub.Uploads = append(sub.Uploads, persist.Upload{
				Field:    field,
				Index:    i,
				Filename: fh.Filename,
				Size:     fh.Size,
				Content:  f,
			})
		}
	}
}

func closeUploads(uploads []persist.Upload) {
	for _, u := range uploads {
		if closer, ok := u.Content.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}
}

// parseOrder extracts attachment ids from the query-encoded item[]
// list, preserving order.
func parseOrder(order string) []int64 {
	values, err := url.ParseQuery(order)
	if err != nil {
		return nil
	}
	items := values["item[]"]
	if len(items) == 0 {
		items = values["item"]
	}
	ids := make([]int64, 0, len(items))
	for _, raw := range items {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
