// Package web serves the party generator page over HTTP
package web

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/KirkDiggler/party-generator/internal/entities"
	"github.com/KirkDiggler/party-generator/internal/errors"
	"github.com/KirkDiggler/party-generator/internal/orchestrators/party"
)

const (
	// PageIDParam carries the page ID on every request a page makes
	PageIDParam = "page_id"

	localsPageID = "page_id"
)

// HandlerConfig holds dependencies for the handler
type HandlerConfig struct {
	PartyService party.Service
	Images       ImageLocator
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.PartyService == nil {
		vb.RequiredField("PartyService")
	}
	if c.Images == nil {
		vb.RequiredField("Images")
	}

	return vb.Build()
}

// Handler serves the page, its fragments and the state stream
type Handler struct {
	partyService party.Service
	images       ImageLocator
}

// NewHandler creates a new handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Handler{
		partyService: cfg.PartyService,
		images:       cfg.Images,
	}, nil
}

// Register mounts every route on app
func (h *Handler) Register(app *fiber.App) {
	app.Get("/", h.Page)
	app.Post("/generate", h.Generate)
	app.Get("/fragments/cards", h.Cards)
	app.Post("/page/close", h.Close)
	app.Get("/health", Health)

	v1 := app.Group("/api/v1")
	v1.Get("/state", h.State)

	app.Use("/ws", h.upgrade)
	app.Get("/ws", websocket.New(h.Stream))
}

// Health reports the server is up
func Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).SendString("Healthy")
}

// Page renders the full page. Every load without a page ID opens a fresh
// page; a known page ID (the no-script redirect after a trigger) renders
// that page again.
func (h *Handler) Page(c *fiber.Ctx) error {
	state, err := h.pageOrOpen(c, c.Query(PageIDParam))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := RenderPage(&buf, NewPageView(state, h.images)); err != nil {
		return err
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

type generateResponse struct {
	State   *entities.ViewState `json:"state"`
	Started bool                `json:"started"`
}

// Generate triggers a generation request. Form posts are redirected back to
// the page; JSON callers get the state right after the trigger.
// A page that has expired is replaced by a fresh one; the response carries
// its ID.
func (h *Handler) Generate(c *fiber.Ctx) error {
	state, err := h.pageOrOpen(c, c.FormValue(PageIDParam))
	if err != nil {
		return err
	}

	output, err := h.partyService.GenerateParty(c.UserContext(), &party.GeneratePartyInput{
		PageID: state.PageID,
	})
	if err != nil {
		return err
	}

	if wantsJSON(c) {
		return c.Status(fiber.StatusAccepted).JSON(generateResponse{
			State:   output.State,
			Started: output.Started,
		})
	}

	return c.Redirect("/?"+PageIDParam+"="+url.QueryEscape(output.State.PageID), fiber.StatusSeeOther)
}

// Cards renders only the card grid
func (h *Handler) Cards(c *fiber.Ctx) error {
	state, err := h.page(c, c.Query(PageIDParam))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := RenderCardGrid(&buf, NewCardGridView(state, h.images)); err != nil {
		return err
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// State returns the page state as JSON
func (h *Handler) State(c *fiber.Ctx) error {
	state, err := h.page(c, c.Query(PageIDParam))
	if err != nil {
		return err
	}

	return c.JSON(state)
}

// Close tears down a page. Sent by the page itself when it goes away.
func (h *Handler) Close(c *fiber.Ctx) error {
	if pageID := c.FormValue(PageIDParam); pageID != "" {
		if _, err := h.partyService.ClosePage(c.UserContext(), &party.ClosePageInput{
			PageID: pageID,
		}); err != nil {
			return err
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// upgrade only lets websocket handshakes through to the stream
func (h *Handler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	c.Locals(localsPageID, c.Query(PageIDParam))
	return c.Next()
}

// Stream pushes the page state on every change until either side goes away
func (h *Handler) Stream(conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	pageID, _ := conn.Locals(localsPageID).(string)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := h.partyService.Subscribe(ctx, &party.SubscribeInput{PageID: pageID})
	if err != nil {
		slog.Warn("state stream rejected", "page_id", pageID, "error", err)
		_ = conn.WriteJSON(fiber.Map{"error": errors.GetMessage(err)})
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		// closing the connection unblocks the read loop below
		defer func() { _ = conn.Close() }()

		for state := range sub.Updates {
			if err := conn.WriteJSON(state); err != nil {
				slog.Debug("state stream write failed", "page_id", pageID, "error", err)
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	<-done
}

// page returns the state of an existing page
func (h *Handler) page(c *fiber.Ctx, pageID string) (*entities.ViewState, error) {
	output, err := h.partyService.GetPage(c.UserContext(), &party.GetPageInput{PageID: pageID})
	if err != nil {
		return nil, err
	}
	return output.State, nil
}

// pageOrOpen returns the page for pageID, opening a new one when pageID is
// empty or its page is gone.
func (h *Handler) pageOrOpen(c *fiber.Ctx, pageID string) (*entities.ViewState, error) {
	ctx := c.UserContext()

	if pageID != "" {
		state, err := h.page(c, pageID)
		if err == nil {
			return state, nil
		}
		if !errors.IsNotFound(err) {
			return nil, err
		}
		slog.DebugContext(ctx, "page expired, opening a new one", "page_id", pageID)
	}

	output, err := h.partyService.OpenPage(ctx, &party.OpenPageInput{})
	if err != nil {
		return nil, err
	}
	return output.State, nil
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

// ErrorHandler maps errors to HTTP responses
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if stderrors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).SendString(fiberErr.Message)
	}

	code := errors.GetCode(err)
	status := code.HTTPStatus()
	if status >= fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"code", code,
			"error", err)
	}

	return c.Status(status).JSON(fiber.Map{
		"code":  code,
		"error": errors.GetMessage(err),
	})
}
