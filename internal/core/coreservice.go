package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/jo-hoe/spectra/internal/backend/database"
	"github.com/jo-hoe/spectra/internal/common"
)

// StoreSource returns the shared store handle, connecting on first use.
type StoreSource func(ctx context.Context) (database.TabularStore, error)

type CoreService struct {
	config   *ServiceConfig
	stores   StoreSource
	gate     AdminGate
	location *time.Location
	now      func() time.Time
	closer   func() error
}

// NewCoreService wires the service to a process-wide connector for the configured store.
func NewCoreService(config *ServiceConfig) *CoreService {
	connector := database.NewConnector(Tables())
	service := newCoreService(config, func(ctx context.Context) (database.TabularStore, error) {
		databaseConfig, err := config.DatabaseConfig()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", database.ErrStoreUnavailable, err)
		}
		return connector.Store(ctx, databaseConfig)
	})
	service.closer = connector.Close
	return service
}

// NewCoreServiceWithStore uses store for every operation.
func NewCoreServiceWithStore(config *ServiceConfig, store database.TabularStore) *CoreService {
	service := newCoreService(config, func(context.Context) (database.TabularStore, error) {
		return store, nil
	})
	service.closer = store.Close
	return service
}

func newCoreService(config *ServiceConfig, stores StoreSource) *CoreService {
	return &CoreService{
		config:   config,
		stores:   stores,
		gate:     NewAdminGate(config.AdminSecret),
		location: config.Location(),
		now:      time.Now,
	}
}

func (service *CoreService) Close() error {
	if service.closer == nil {
		return nil
	}
	return service.closer()
}

// Gate exposes the admin gate so pages can decide whether to show admin forms.
func (service *CoreService) Gate() AdminGate {
	return service.gate
}

func (service *CoreService) Event() EventConfig {
	return service.config.Event
}

// PingStore checks that the store can be reached.
func (service *CoreService) PingStore(ctx context.Context) error {
	store, err := service.stores(ctx)
	if err != nil {
		return err
	}
	return store.Ping(ctx)
}

// ListAnnouncements returns every announcement, most recent first.
func (service *CoreService) ListAnnouncements(ctx context.Context) ([]Announcement, error) {
	records, err := service.readAll(ctx, AnnouncementsTable)
	if err != nil {
		return nil, err
	}

	announcements := make([]Announcement, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		announcements = append(announcements, announcementFromRecord(records[i]))
	}
	return announcements, nil
}

// PostAnnouncement appends an announcement when pin unlocks the gate.
func (service *CoreService) PostAnnouncement(ctx context.Context, pin string, submission AnnouncementSubmission) (Announcement, error) {
	if !service.gate.Check(pin) {
		return Announcement{}, ErrLocked
	}
	if err := check(submission, map[string]string{
		"title":   "Title and message are required.",
		"message": "Title and message are required.",
	}); err != nil {
		return Announcement{}, err
	}

	announcement := Announcement{
		Timestamp: service.timestamp(),
		Title:     submission.Title,
		Message:   submission.Message,
		Audience:  submission.Audience,
	}
	if err := service.append(ctx, AnnouncementsTable, announcement.record()); err != nil {
		return Announcement{}, err
	}
	slog.Info("announcement posted", "title", announcement.Title, "timestamp", announcement.Timestamp)
	return announcement, nil
}

// GalleryView is one render of the gallery: the filtered items and the filter options.
// Classes is empty when the gallery has no items at all.
type GalleryView struct {
	Items    []GalleryItem
	Classes  []string
	Selected string
	Total    int
}

// ListGallery reads every gallery item and applies the class filter. The filter is an
// exact match; AllClasses or "" selects everything.
func (service *CoreService) ListGallery(ctx context.Context, filter string) (GalleryView, error) {
	records, err := service.readAll(ctx, GalleryTable)
	if err != nil {
		return GalleryView{}, err
	}

	if filter == "" {
		filter = AllClasses
	}
	view := GalleryView{Selected: filter, Total: len(records), Items: []GalleryItem{}}
	if len(records) == 0 {
		return view, nil
	}

	items := make([]GalleryItem, 0, len(records))
	for _, record := range records {
		items = append(items, galleryItemFromRecord(record))
	}
	view.Classes = append([]string{AllClasses}, distinctClasses(items)...)
	view.Items = FilterByClass(items, filter)
	return view, nil
}

// FilterByClass keeps the items whose class equals class exactly.
func FilterByClass(items []GalleryItem, class string) []GalleryItem {
	if class == AllClasses {
		return items
	}
	filtered := []GalleryItem{}
	for _, item := range items {
		if item.Class == class {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// distinctClasses returns the non-empty classes present, ascending. Numeric classes
// sort by value so that 10 follows 9.
func distinctClasses(items []GalleryItem) []string {
	seen := map[string]bool{}
	classes := []string{}
	for _, item := range items {
		if item.Class == "" || seen[item.Class] {
			continue
		}
		seen[item.Class] = true
		classes = append(classes, item.Class)
	}
	slices.SortFunc(classes, compareClasses)
	return classes
}

func compareClasses(a, b string) int {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return x - y
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// AddGalleryItem appends a photo when pin unlocks the gate.
func (service *CoreService) AddGalleryItem(ctx context.Context, pin string, submission GallerySubmission) (GalleryItem, error) {
	if !service.gate.Check(pin) {
		return GalleryItem{}, ErrLocked
	}
	if err := check(submission, map[string]string{
		"image_url": "Image URL is required.",
		"class":     "Please choose a class between 6 and 12.",
	}); err != nil {
		return GalleryItem{}, err
	}

	item := GalleryItem{
		Timestamp: service.timestamp(),
		Title:     submission.Title,
		Class:     submission.Class,
		ImageURL:  submission.ImageURL,
	}
	if err := service.append(ctx, GalleryTable, item.record()); err != nil {
		return GalleryItem{}, err
	}
	slog.Info("gallery item added", "class", item.Class, "timestamp", item.Timestamp)
	return item, nil
}

// Register appends an event registration. Registration is open to every visitor.
func (service *CoreService) Register(ctx context.Context, submission RegistrationSubmission) (Registration, error) {
	choice := "Please choose a class, section and event from the lists."
	if err := check(submission, map[string]string{
		"name":    "Student Name required.",
		"class":   choice,
		"section": choice,
		"event":   choice,
	}); err != nil {
		return Registration{}, err
	}

	registration := Registration{
		Timestamp:   service.timestamp(),
		StudentName: submission.Name,
		Class:       submission.Class,
		Section:     submission.Section,
		Event:       submission.Event,
		Phone:       submission.Phone,
	}
	if err := service.append(ctx, RegistrationsTable, registration.record()); err != nil {
		return Registration{}, err
	}
	slog.Info("registration submitted", "event", registration.Event, "class", registration.Class, "section", registration.Section)
	return registration, nil
}

func (service *CoreService) timestamp() string {
	return service.now().In(service.location).Format(TimestampLayout)
}

func (service *CoreService) readAll(ctx context.Context, table database.Table) ([]database.Record, error) {
	store, err := service.stores(ctx)
	if err != nil {
		return nil, err
	}
	records, err := store.ReadAll(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table.Name, err)
	}
	return records, nil
}

func (service *CoreService) append(ctx context.Context, table database.Table, record database.Record) error {
	store, err := service.stores(ctx)
	if err != nil {
		return err
	}
	if err := store.Append(ctx, table, table.Encode(record)); err != nil {
		return fmt.Errorf("failed to append to %s: %w", table.Name, err)
	}
	return nil
}

// check validates a submission and turns field errors into a ValidationError whose
// message joins the distinct messages of the failed fields.
func check(submission any, messages map[string]string) error {
	err := common.Validator().Struct(submission)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("failed to validate submission: %w", err)
	}

	validationError := &ValidationError{}
	var parts []string
	for _, fieldError := range fieldErrors {
		field := fieldError.Field()
		validationError.Fields = append(validationError.Fields, field)
		message, ok := messages[field]
		if !ok {
			message = fmt.Sprintf("%s is invalid.", field)
		}
		if !slices.Contains(parts, message) {
			parts = append(parts, message)
		}
	}
	validationError.Message = strings.Join(parts, " ")
	return validationError
}
