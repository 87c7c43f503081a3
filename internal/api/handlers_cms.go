package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slmn-lf/east-stress-store/internal/cms"
	"github.com/slmn-lf/east-stress-store/internal/models"
)

func (s *Server) getCMSProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.cms.Get(r.Context())
	if err != nil {
		fail(w, r, err, "cms profile")
		return
	}
	respond(w, r, http.StatusOK, p, nil)
}

func (s *Server) replaceCMSProfile(w http.ResponseWriter, r *http.Request) {
	var p models.CMSProfile
	if !decodeOrFail(w, r, &p) {
		return
	}
	saved, err := s.cms.Replace(r.Context(), p)
	if err != nil {
		fail(w, r, err, "cms profile")
		return
	}
	respond(w, r, http.StatusOK, saved, nil)
}

type contactSectionRequest struct {
	models.Contact
	ContactRecipientEmail *string `json:"contact_recipient_email"`
}

func (s *Server) updateCMSSection(w http.ResponseWriter, r *http.Request) {
	var (
		saved models.CMSProfile
		err   error
	)
	switch chi.URLParam(r, "section") {
	case cms.SectionHero:
		var hero models.Hero
		if !decodeOrFail(w, r, &hero) {
			return
		}
		saved, err = s.cms.UpdateHero(r.Context(), hero)
	case cms.SectionAbout:
		var about models.About
		if !decodeOrFail(w, r, &about) {
			return
		}
		saved, err = s.cms.UpdateAbout(r.Context(), about)
	case cms.SectionContact:
		var req contactSectionRequest
		if !decodeOrFail(w, r, &req) {
			return
		}
		saved, err = s.cms.UpdateContact(r.Context(), req.Contact, req.ContactRecipientEmail)
	default:
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "unknown section", nil)
		return
	}
	if err != nil {
		fail(w, r, err, "cms profile")
		return
	}
	respond(w, r, http.StatusOK, saved, nil)
}

func (s *Server) submitContact(w http.ResponseWriter, r *http.Request) {
	var in cms.ContactInput
	if !decodeOrFail(w, r, &in) {
		return
	}
	msg, err := s.cms.SubmitContact(r.Context(), in)
	if err != nil {
		fail(w, r, err, "contact message")
		return
	}
	respond(w, r, http.StatusCreated, msg, nil)
}

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.cms.ListContacts(r.Context(), intParam(r, "limit", cms.DefaultContactLimit, 1, cms.MaxContactLimit))
	if err != nil {
		fail(w, r, err, "contact message")
		return
	}
	count := len(msgs)
	respond(w, r, http.StatusOK, msgs, &APIMeta{Count: &count})
}
