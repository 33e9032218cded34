package frontend

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/spectra/internal/backend/database"
	"github.com/jo-hoe/spectra/internal/backend/icon"
	"github.com/jo-hoe/spectra/internal/core"
	"github.com/jo-hoe/spectra/internal/nav"
)

const (
	mimePNG = "image/png"
	mimeSVG = "image/svg+xml"
	iconSVG = "views/icon.svg"
)

// User facing copy.
const (
	announcementAdded     = "Announcement added!"
	photoAdded            = "Photo added!"
	registrationSubmitted = "Registration submitted!"

	lockedAnnouncements = "Enter Admin PIN to post announcements."
	lockedGallery       = "Enter Admin PIN to upload."
	gateNotConfigured   = "Admin posting is disabled because no admin PIN is configured."
	incorrectPin        = "Incorrect PIN."

	storeUnavailable = "The event data is unavailable right now. Please try again in a moment."
	storeWriteFailed = "Your entry could not be saved. Please try again."
	unexpectedError  = "Something went wrong. Please try again."
)

type adminState struct {
	Unlocked bool
	PIN      string
	Caption  string
	Error    string
}

// pageData is the render model shared by every page template.
type pageData struct {
	Page      nav.Page
	Title     string
	Menu      []nav.MenuItem
	Event     core.EventConfig
	CSRFField template.HTML

	Success string
	Error   string
	Admin   adminState

	QuickLinks []nav.QuickLink

	Announcements    []core.Announcement
	AnnouncementForm core.AnnouncementSubmission

	Gallery     core.GalleryView
	GalleryForm core.GallerySubmission

	RegistrationForm core.RegistrationSubmission

	Classes  []string
	Sections []string
	Events   []string

	Status  int
	Message string
}

type FrontendService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
}

func NewFrontendService(config *core.ServiceConfig, coreService *core.CoreService) *FrontendService {
	return &FrontendService{
		coreService: coreService,
		config:      config,
	}
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	renderer, err := NewTemplate()
	if err != nil {
		panic(err)
	}
	e.Renderer = renderer

	pages := service.pageMiddleware()

	e.GET(nav.Home.Path(), service.homeHandler, pages...)
	e.GET("/navigate", service.navigateHandler)

	e.GET(nav.Announcements.Path(), service.announcementsHandler, pages...)
	e.POST(nav.Announcements.Path()+"/unlock", service.unlockAnnouncementsHandler, pages...)
	e.POST(nav.Announcements.Path(), service.postAnnouncementHandler, pages...)

	e.GET(nav.Gallery.Path(), service.galleryHandler, pages...)
	e.POST(nav.Gallery.Path()+"/unlock", service.unlockGalleryHandler, pages...)
	e.POST(nav.Gallery.Path(), service.addGalleryItemHandler, pages...)

	e.GET(nav.Registration.Path(), service.registrationHandler, pages...)
	e.POST(nav.Registration.Path(), service.registerHandler, pages...)

	// Favicon routes
	e.GET("/icon.svg", service.iconHandler)
	e.GET("/icon.png", service.iconPNGHandler)
}

// pageMiddleware returns the CSRF protection for the HTML pages, or nothing when it is disabled.
func (service *FrontendService) pageMiddleware() []echo.MiddlewareFunc {
	if !service.config.CSRF.Enabled {
		return nil
	}

	key, err := hex.DecodeString(service.config.CSRF.Key)
	if err != nil || len(key) != 32 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Errorf("failed to generate csrf key: %w", err))
		}
		slog.Warn("no csrf key configured, using a random key; forms break across restarts")
	}

	protect := csrf.Protect(
		key,
		csrf.Secure(service.config.CSRF.Secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.TrustedOrigins(service.config.CSRF.TrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailureHandler)),
	)
	return []echo.MiddlewareFunc{markPlaintext, echo.WrapMiddleware(protect)}
}

// markPlaintext tells the CSRF check that a request arrived over plain HTTP,
// which skips the Referer check it applies to HTTPS requests.
func markPlaintext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if ctx.Scheme() != "https" {
			ctx.SetRequest(csrf.PlaintextHTTPRequest(ctx.Request()))
		}
		return next(ctx)
	}
}

func csrfFailureHandler(w http.ResponseWriter, r *http.Request) {
	slog.Warn("csrf check failed", "status", http.StatusForbidden, "path", r.URL.Path, "reason", csrf.FailureReason(r))
	http.Error(w, "Forbidden: the form expired. Reload the page and try again.", http.StatusForbidden)
}

func (service *FrontendService) newPage(ctx echo.Context, page nav.Page) pageData {
	data := pageData{
		Page:     page,
		Title:    page.Title(),
		Menu:     nav.Menu(page),
		Event:    service.coreService.Event(),
		Classes:  core.Classes,
		Sections: core.Sections,
		Events:   core.Events,
	}
	if service.config.CSRF.Enabled {
		data.CSRFField = csrf.TemplateField(ctx.Request())
	}
	return data
}

func (service *FrontendService) homeHandler(ctx echo.Context) error {
	data := service.newPage(ctx, nav.Home)
	data.QuickLinks = nav.QuickLinks()
	return ctx.Render(http.StatusOK, homeTemplate, data)
}

// navigateHandler handles the page selector.
func (service *FrontendService) navigateHandler(ctx echo.Context) error {
	return ctx.Redirect(http.StatusSeeOther, nav.Parse(ctx.QueryParam("page")).Path())
}

func (service *FrontendService) announcementsHandler(ctx echo.Context) error {
	return service.renderAnnouncements(ctx, http.StatusOK, service.newPage(ctx, nav.Announcements))
}

func (service *FrontendService) unlockAnnouncementsHandler(ctx echo.Context) error {
	data := service.newPage(ctx, nav.Announcements)
	status := service.unlock(ctx, &data)
	return service.renderAnnouncements(ctx, status, data)
}

func (service *FrontendService) postAnnouncementHandler(ctx echo.Context) error {
	var submission core.AnnouncementSubmission
	if err := ctx.Bind(&submission); err != nil {
		slog.Warn("postAnnouncementHandler: failed to bind form", "status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Invalid form submission")
	}
	pin := ctx.FormValue("pin")

	data := service.newPage(ctx, nav.Announcements)
	data.Admin = adminState{Unlocked: true, PIN: pin}
	data.AnnouncementForm = submission

	_, err := service.coreService.PostAnnouncement(ctx.Request().Context(), pin, submission)
	status := service.applyOutcome(&data, err, announcementAdded)
	if err == nil {
		data.AnnouncementForm = core.AnnouncementSubmission{}
	}
	return service.renderAnnouncements(ctx, status, data)
}

func (service *FrontendService) renderAnnouncements(ctx echo.Context, status int, data pageData) error {
	announcements, err := service.coreService.ListAnnouncements(ctx.Request().Context())
	if err != nil {
		return service.renderError(ctx, nav.Announcements, err)
	}
	data.Announcements = announcements
	service.lockedCaption(&data, lockedAnnouncements)

	service.setNoCache(ctx)
	return ctx.Render(status, announcementsTemplate, data)
}

func (service *FrontendService) galleryHandler(ctx echo.Context) error {
	return service.renderGallery(ctx, http.StatusOK, service.newPage(ctx, nav.Gallery))
}

func (service *FrontendService) unlockGalleryHandler(ctx echo.Context) error {
	data := service.newPage(ctx, nav.Gallery)
	status := service.unlock(ctx, &data)
	return service.renderGallery(ctx, status, data)
}

func (service *FrontendService) addGalleryItemHandler(ctx echo.Context) error {
	var submission core.GallerySubmission
	if err := ctx.Bind(&submission); err != nil {
		slog.Warn("addGalleryItemHandler: failed to bind form", "status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Invalid form submission")
	}
	pin := ctx.FormValue("pin")

	data := service.newPage(ctx, nav.Gallery)
	data.Admin = adminState{Unlocked: true, PIN: pin}
	data.GalleryForm = submission

	_, err := service.coreService.AddGalleryItem(ctx.Request().Context(), pin, submission)
	status := service.applyOutcome(&data, err, photoAdded)
	if err == nil {
		data.GalleryForm = core.GallerySubmission{}
	}
	return service.renderGallery(ctx, status, data)
}

func (service *FrontendService) renderGallery(ctx echo.Context, status int, data pageData) error {
	view, err := service.coreService.ListGallery(ctx.Request().Context(), ctx.QueryParam("class"))
	if err != nil {
		return service.renderError(ctx, nav.Gallery, err)
	}
	data.Gallery = view
	service.lockedCaption(&data, lockedGallery)

	service.setNoCache(ctx)
	return ctx.Render(status, galleryTemplate, data)
}

func (service *FrontendService) registrationHandler(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, registrationTemplate, service.newPage(ctx, nav.Registration))
}

func (service *FrontendService) registerHandler(ctx echo.Context) error {
	var submission core.RegistrationSubmission
	if err := ctx.Bind(&submission); err != nil {
		slog.Warn("registerHandler: failed to bind form", "status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Invalid form submission")
	}

	data := service.newPage(ctx, nav.Registration)
	data.RegistrationForm = submission

	_, err := service.coreService.Register(ctx.Request().Context(), submission)
	status := service.applyOutcome(&data, err, registrationSubmitted)
	if err == nil {
		data.RegistrationForm = core.RegistrationSubmission{}
	}
	if status == http.StatusServiceUnavailable {
		return service.renderError(ctx, nav.Registration, err)
	}

	service.setNoCache(ctx)
	return ctx.Render(status, registrationTemplate, data)
}

// unlock checks the submitted PIN and opens the admin form on success.
func (service *FrontendService) unlock(ctx echo.Context, data *pageData) int {
	pin := ctx.FormValue("pin")
	if !service.coreService.Gate().Check(pin) {
		slog.Info("admin unlock rejected", "status", http.StatusForbidden, "page", data.Page.String())
		data.Admin.Error = incorrectPin
		return http.StatusForbidden
	}
	data.Admin = adminState{Unlocked: true, PIN: pin}
	return http.StatusOK
}

func (service *FrontendService) lockedCaption(data *pageData, caption string) {
	if data.Admin.Unlocked {
		return
	}
	if !service.coreService.Gate().Configured() {
		caption = gateNotConfigured
	}
	data.Admin.Caption = caption
}

// applyOutcome maps the result of a form write onto the page and returns the status code.
func (service *FrontendService) applyOutcome(data *pageData, err error, success string) int {
	var validationError *core.ValidationError
	switch {
	case err == nil:
		data.Success = success
		return http.StatusOK
	case errors.Is(err, core.ErrLocked):
		data.Admin = adminState{Error: incorrectPin}
		return http.StatusForbidden
	case errors.As(err, &validationError):
		data.Error = validationError.Message
		return http.StatusUnprocessableEntity
	case errors.Is(err, database.ErrStoreWrite):
		slog.Error("failed to save form", "status", http.StatusBadGateway, "page", data.Page.String(), "error", err)
		data.Error = storeWriteFailed
		return http.StatusBadGateway
	case errors.Is(err, database.ErrStoreUnavailable):
		slog.Error("store unavailable while saving form", "status", http.StatusServiceUnavailable, "page", data.Page.String(), "error", err)
		data.Error = storeUnavailable
		return http.StatusServiceUnavailable
	default:
		slog.Error("unexpected error while saving form", "status", http.StatusInternalServerError, "page", data.Page.String(), "error", err)
		data.Error = unexpectedError
		return http.StatusInternalServerError
	}
}

// renderError replaces the whole page when its data cannot be read.
func (service *FrontendService) renderError(ctx echo.Context, page nav.Page, err error) error {
	status := http.StatusInternalServerError
	message := unexpectedError
	if errors.Is(err, database.ErrStoreUnavailable) {
		status = http.StatusServiceUnavailable
		message = storeUnavailable
	}
	slog.Error("failed to load page", "status", status, "page", page.String(), "error", err)

	data := service.newPage(ctx, page)
	data.Status = status
	data.Message = message
	service.setNoCache(ctx)
	return ctx.Render(status, errorTemplate, data)
}

func (service *FrontendService) setNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile(iconSVG)
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, mimeSVG, data)
}

func (service *FrontendService) iconPNGHandler(ctx echo.Context) error {
	size := icon.DefaultSize
	if raw := ctx.QueryParam("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < icon.MinSize || parsed > icon.MaxSize {
			return ctx.String(http.StatusBadRequest, fmt.Sprintf("size must be between %d and %d", icon.MinSize, icon.MaxSize))
		}
		size = parsed
	}

	data, err := assetsFS.ReadFile(iconSVG)
	if err != nil {
		slog.Error("iconPNGHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	rendered, err := icon.RenderPNG(data, size)
	if err != nil {
		slog.Error("iconPNGHandler: failed to render icon", "status", http.StatusInternalServerError, "size", size, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to render icon")
	}
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, mimePNG, rendered)
}
