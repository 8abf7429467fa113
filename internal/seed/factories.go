// Package seed provides helpers to create built-in and demo data for the
// hub database. Demo helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"imhub/internal/models"
	"imhub/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var (
	sectors = []string{
		"Cross-Sector", "Shelter", "WASH", "Health", "Protection",
		"Education", "Food Security", "Logistics", "Early Recovery",
	}

	parishes = []string{
		"Kingston", "St. Andrew", "St. Catherine", "Clarendon", "Manchester",
		"St. Elizabeth", "Westmoreland", "Hanover", "St. James", "Trelawny",
		"St. Ann", "St. Mary", "Portland", "St. Thomas",
	}

	organizations = []string{
		"UNICEF", "UNHCR", "WFP", "WHO/PAHO", "IOM", "OCHA", "UNDP",
		"Jamaica Red Cross", "ODPEM", "MapAction",
	}

	resourceCategories = []string{"guidance", "template", "dataset", "dashboard", "map"}
)

// Factory builds directory entities with realistic fake values and persists
// them through Gorm.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, faker: gofakeit.New(seed)}
}

// BuildContact returns an approved, valid contact located in Jamaica.
func (f *Factory) BuildContact(overrides ...func(*models.Contact)) *models.Contact {
	lat, _ := f.faker.LatitudeInRange(17.7, 18.5)
	lng, _ := f.faker.LongitudeInRange(-78.4, -76.2)
	org := f.faker.RandomString(organizations)

	c := &models.Contact{
		Moderation:   models.Moderation{Approved: true},
		Name:         f.faker.Name(),
		Organization: org,
		Position:     f.faker.JobTitle(),
		Email:        f.emailAt(org),
		Phone:        fmt.Sprintf("+1-876-555-%04d", f.faker.Number(0, 9999)),
		Sector:       f.faker.RandomString(sectors),
		Parish:       f.faker.RandomString(parishes),
		Community:    f.faker.City(),
		Latitude:     fmt.Sprintf("%.4f", lat),
		Longitude:    fmt.Sprintf("%.4f", lng),
		LocationType: f.faker.RandomString([]string{
			models.LocationTypeField, models.LocationTypeOffice, models.LocationTypeRemote, models.LocationTypeMobile,
		}),
		Status: f.faker.RandomString([]string{models.ContactStatusActive, models.ContactStatusDeployed}),
		Notes:  f.faker.Sentence(8),
	}
	for _, override := range overrides {
		override(c)
	}
	return c
}

// BuildResource returns a resource. Demo resources are approved unless overridden.
func (f *Factory) BuildResource(overrides ...func(*models.Resource)) *models.Resource {
	r := &models.Resource{
		Moderation:  models.Moderation{Approved: true},
		Title:       strings.TrimSuffix(f.faker.Sentence(4), "."),
		Description: f.faker.Paragraph(1, 2, 12, " "),
		URL:         f.faker.URL(),
		Category:    f.faker.RandomString(resourceCategories),
		Sector:      f.faker.RandomString(sectors),
		SubmittedBy: f.faker.Name(),
		Email:       f.faker.Email(),
	}
	for _, override := range overrides {
		override(r)
	}
	return r
}

// BuildSubmission returns a pending contact submission.
func (f *Factory) BuildSubmission(overrides ...func(*models.ContactSubmission)) *models.ContactSubmission {
	org := f.faker.RandomString(organizations)
	s := &models.ContactSubmission{
		Organization:   org,
		FocalPointName: f.faker.Name(),
		Email:          f.emailAt(org),
		Phone:          fmt.Sprintf("+1-876-555-%04d", f.faker.Number(0, 9999)),
		Sector:         f.faker.RandomString(sectors),
		Role:           f.faker.JobTitle(),
		Location:       f.faker.RandomString(parishes),
		AdditionalInfo: f.faker.Sentence(10),
	}
	for _, override := range overrides {
		override(s)
	}
	return s
}

// CreateContacts persists n contacts.
func (f *Factory) CreateContacts(n int) ([]*models.Contact, error) {
	out := make([]*models.Contact, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.BuildContact())
	}
	return out, f.persist(len(out), func(i int) any { return out[i] })
}

// CreateResources persists n resources.
func (f *Factory) CreateResources(n int) ([]*models.Resource, error) {
	out := make([]*models.Resource, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.BuildResource())
	}
	return out, f.persist(len(out), func(i int) any { return out[i] })
}

// CreateSubmissions persists n pending submissions.
func (f *Factory) CreateSubmissions(n int) ([]*models.ContactSubmission, error) {
	out := make([]*models.ContactSubmission, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.BuildSubmission())
	}
	return out, f.persist(len(out), func(i int) any { return out[i] })
}

// persist validates and inserts each record, stamping lifecycle fields first.
func (f *Factory) persist(n int, at func(int) any) error {
	stamp := now()
	for i := 0; i < n; i++ {
		rec := at(i)
		if e, ok := rec.(models.Entity); ok {
			e.PrepareCreate(stamp)
		}
		if err := validation.Struct(rec); err != nil {
			return fmt.Errorf("invalid demo record %T: %w", rec, err)
		}
		if err := f.db.Create(rec).Error; err != nil {
			return err
		}
	}
	return nil
}

func (f *Factory) emailAt(org string) string {
	domain := strings.ToLower(strings.NewReplacer(" ", "", "/", "", ".", "").Replace(org)) + ".org"
	return fmt.Sprintf("%s.%s@%s",
		strings.ToLower(f.faker.FirstName()), strings.ToLower(f.faker.LastName()), domain)
}

func now() time.Time {
	return time.Now().UTC()
}
