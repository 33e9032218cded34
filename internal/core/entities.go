package core

import (
	"github.com/jo-hoe/spectra/internal/backend/database"
	"github.com/jo-hoe/spectra/internal/common"
)

// TimestampLayout is the fixed format of every row's timestamp (YYYY-MM-DD HH:MM:SS).
const TimestampLayout = "2006-01-02 15:04:05"

// AllClasses is the gallery filter value that disables filtering.
const AllClasses = "All"

var (
	Classes  = []string{"6", "7", "8", "9", "10", "11", "12"}
	Sections = []string{"A", "B", "C", "D", "E"}
	Events   = []string{"Skit", "Dance", "Mime", "Volunteer", "Anchor", "Choir", "Special Item"}
)

var (
	AnnouncementsTable = database.Table{Name: "Announcements", Columns: []string{"timestamp", "title", "message", "audience"}}
	GalleryTable       = database.Table{Name: "Gallery", Columns: []string{"timestamp", "title", "class", "image_url"}}
	RegistrationsTable = database.Table{Name: "Registrations", Columns: []string{"timestamp", "name", "class", "section", "event", "phone"}}
)

// Tables lists every table the store must provide.
func Tables() []database.Table {
	return []database.Table{AnnouncementsTable, GalleryTable, RegistrationsTable}
}

func init() {
	common.RegisterEnum("classes", Classes...)
	common.RegisterEnum("sections", Sections...)
	common.RegisterEnum("events", Events...)
}

type Announcement struct {
	Timestamp string
	Title     string
	Message   string
	Audience  string
}

func (a Announcement) record() database.Record {
	return database.Record{"timestamp": a.Timestamp, "title": a.Title, "message": a.Message, "audience": a.Audience}
}

func announcementFromRecord(r database.Record) Announcement {
	return Announcement{Timestamp: r["timestamp"], Title: r["title"], Message: r["message"], Audience: r["audience"]}
}

type GalleryItem struct {
	Timestamp string
	Title     string
	Class     string
	ImageURL  string
}

func (g GalleryItem) record() database.Record {
	return database.Record{"timestamp": g.Timestamp, "title": g.Title, "class": g.Class, "image_url": g.ImageURL}
}

func galleryItemFromRecord(r database.Record) GalleryItem {
	return GalleryItem{Timestamp: r["timestamp"], Title: r["title"], Class: r["class"], ImageURL: r["image_url"]}
}

type Registration struct {
	Timestamp   string
	StudentName string
	Class       string
	Section     string
	Event       string
	Phone       string
}

func (r Registration) record() database.Record {
	return database.Record{
		"timestamp": r.Timestamp,
		"name":      r.StudentName,
		"class":     r.Class,
		"section":   r.Section,
		"event":     r.Event,
		"phone":     r.Phone,
	}
}

// Form submissions. Tags name the HTML form fields.

type AnnouncementSubmission struct {
	Title    string `form:"title" validate:"required"`
	Message  string `form:"message" validate:"required"`
	Audience string `form:"audience"`
}

type GallerySubmission struct {
	Title    string `form:"title"`
	Class    string `form:"class" validate:"in=classes"`
	ImageURL string `form:"image_url" validate:"required"`
}

type RegistrationSubmission struct {
	Name    string `form:"name" validate:"required"`
	Class   string `form:"class" validate:"in=classes"`
	Section string `form:"section" validate:"in=sections"`
	Event   string `form:"event" validate:"in=events"`
	Phone   string `form:"phone"`
}
