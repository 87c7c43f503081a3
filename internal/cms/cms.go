// Package cms serves the editable landing page content and the contact
// form inbox.
package cms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/slmn-lf/east-stress-store/internal/logging"
	"github.com/slmn-lf/east-stress-store/internal/metrics"
	"github.com/slmn-lf/east-stress-store/internal/models"
	"github.com/slmn-lf/east-stress-store/internal/store"
	"github.com/slmn-lf/east-stress-store/internal/validation"
)

const (
	HeroImages    = 3
	MaxAboutItems = 10

	DefaultContactLimit = 50
	MaxContactLimit     = 200
)

// Section names accepted by UpdateSection.
const (
	SectionHero    = "hero"
	SectionAbout   = "about"
	SectionContact = "contact"
)

type ContactInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
}

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// Get returns the saved profile merged over the defaults.
func (s *Service) Get(ctx context.Context) (models.CMSProfile, error) {
	saved, err := s.store.GetCMSProfile(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return models.DefaultCMSProfile(), nil
	}
	if err != nil {
		metrics.RecordStoreError("get_cms_profile")
		return models.CMSProfile{}, fmt.Errorf("get cms profile: %w", err)
	}
	return withDefaults(saved), nil
}

// Replace saves the whole document.
func (s *Service) Replace(ctx context.Context, p models.CMSProfile) (models.CMSProfile, error) {
	p = withDefaults(normalize(p))
	if err := check(p); err != nil {
		return models.CMSProfile{}, err
	}
	return s.save(ctx, p, "all")
}

func (s *Service) UpdateHero(ctx context.Context, hero models.Hero) (models.CMSProfile, error) {
	return s.updateSection(ctx, SectionHero, func(p *models.CMSProfile) { p.Hero = hero })
}

func (s *Service) UpdateAbout(ctx context.Context, about models.About) (models.CMSProfile, error) {
	return s.updateSection(ctx, SectionAbout, func(p *models.CMSProfile) { p.About = about })
}

// UpdateContact edits the contact block and the inbox recipient address.
func (s *Service) UpdateContact(ctx context.Context, contact models.Contact, recipient *string) (models.CMSProfile, error) {
	return s.updateSection(ctx, SectionContact, func(p *models.CMSProfile) {
		p.Contact = contact
		if recipient != nil {
			p.ContactRecipientEmail = *recipient
		}
	})
}

// updateSection merges one section into the stored profile. The store runs
// the merge atomically, so concurrent edits of different sections all land.
func (s *Service) updateSection(ctx context.Context, section string, apply func(*models.CMSProfile)) (models.CMSProfile, error) {
	saved, err := s.store.UpdateCMSProfile(ctx, func(cur models.CMSProfile, found bool) (models.CMSProfile, error) {
		if found {
			cur = withDefaults(cur)
		} else {
			cur = models.DefaultCMSProfile()
		}
		apply(&cur)
		cur = withDefaults(normalize(cur))
		if err := check(cur); err != nil {
			return models.CMSProfile{}, err
		}
		cur.UpdatedAt = s.now()
		return cur, nil
	})
	if err != nil {
		var ve *validation.RequestValidationError
		if errors.As(err, &ve) {
			return models.CMSProfile{}, err
		}
		metrics.RecordStoreError("update_cms_profile")
		return models.CMSProfile{}, fmt.Errorf("update cms profile: %w", err)
	}
	logging.Ctx(ctx).Info().Str("section", section).Msg("cms profile saved")
	return saved, nil
}

func (s *Service) save(ctx context.Context, p models.CMSProfile, section string) (models.CMSProfile, error) {
	p.UpdatedAt = s.now()
	if err := s.store.SaveCMSProfile(ctx, p); err != nil {
		metrics.RecordStoreError("save_cms_profile")
		return models.CMSProfile{}, fmt.Errorf("save cms profile: %w", err)
	}
	logging.Ctx(ctx).Info().Str("section", section).Msg("cms profile saved")
	return p, nil
}

// SubmitContact stores a message from the landing page form.
func (s *Service) SubmitContact(ctx context.Context, in ContactInput) (models.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.ValidateStruct(&in); err != nil {
		return models.ContactMessage{}, err
	}
	msg := models.ContactMessage{
		ID:        models.NewID(models.PrefixMessage),
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateContactMessage(ctx, msg); err != nil {
		metrics.RecordStoreError("create_contact_message")
		return models.ContactMessage{}, fmt.Errorf("create contact message: %w", err)
	}
	logging.Ctx(ctx).Info().Str("message_id", msg.ID).Msg("contact message received")
	return msg, nil
}

// ListContacts returns the newest messages first.
func (s *Service) ListContacts(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	switch {
	case limit <= 0:
		limit = DefaultContactLimit
	case limit > MaxContactLimit:
		limit = MaxContactLimit
	}
	msgs, err := s.store.ListContactMessages(ctx, limit)
	if err != nil {
		metrics.RecordStoreError("list_contact_messages")
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return msgs, nil
}

func normalize(p models.CMSProfile) models.CMSProfile {
	p.Hero.Title = strings.TrimSpace(p.Hero.Title)
	p.Hero.Subtitle = strings.TrimSpace(p.Hero.Subtitle)
	p.Hero.CTA = strings.TrimSpace(p.Hero.CTA)
	images := make([]string, len(p.Hero.Images))
	for i, img := range p.Hero.Images {
		images[i] = strings.TrimSpace(img)
	}
	p.Hero.Images = images

	p.About.Title = strings.TrimSpace(p.About.Title)
	items := make([]models.AboutItem, len(p.About.Items))
	for i, it := range p.About.Items {
		items[i] = models.AboutItem{
			ID:      strings.TrimSpace(it.ID),
			Label:   strings.TrimSpace(it.Label),
			Content: strings.TrimSpace(it.Content),
		}
	}
	p.About.Items = items

	c := &p.Contact
	c.Title = strings.TrimSpace(c.Title)
	c.Tagline = strings.TrimSpace(c.Tagline)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	c.Instagram = strings.TrimSpace(c.Instagram)
	c.TikTok = strings.TrimSpace(c.TikTok)
	p.ContactRecipientEmail = strings.TrimSpace(p.ContactRecipientEmail)
	return p
}

// withDefaults pads hero images to three slots and fills an empty about
// block from the defaults.
func withDefaults(p models.CMSProfile) models.CMSProfile {
	def := models.DefaultCMSProfile()
	for len(p.Hero.Images) < HeroImages {
		p.Hero.Images = append(p.Hero.Images, "")
	}
	if p.About.Title == "" {
		p.About.Title = def.About.Title
	}
	if len(p.About.Items) == 0 {
		p.About.Items = def.About.Items
	}
	return p
}

func check(p models.CMSProfile) error {
	if len(p.Hero.Images) > HeroImages {
		return validation.New("hero.images", fmt.Sprintf("hero.images must contain at most %d items", HeroImages))
	}
	for _, img := range p.Hero.Images {
		if img != "" && !validation.ValidHTTPURL(img) {
			return validation.New("hero.images", "hero.images must start with http:// or https://")
		}
	}
	if len(p.About.Items) > MaxAboutItems {
		return validation.New("about.items", fmt.Sprintf("about.items must contain at most %d items", MaxAboutItems))
	}
	seen := make(map[string]bool, len(p.About.Items))
	for _, it := range p.About.Items {
		if it.ID == "" {
			return validation.New("about.items", "about item id is required")
		}
		if seen[it.ID] {
			return validation.New("about.items", fmt.Sprintf("duplicate about item id %q", it.ID))
		}
		seen[it.ID] = true
	}
	v := validation.GetValidator()
	if p.Contact.Email != "" && v.Var(p.Contact.Email, "email") != nil {
		return validation.New("contact.email", "contact.email must be a valid email address")
	}
	if p.ContactRecipientEmail != "" && v.Var(p.ContactRecipientEmail, "email") != nil {
		return validation.New("contact_recipient_email", "contact_recipient_email must be a valid email address")
	}
	return nil
}
