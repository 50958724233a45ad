package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/cradoe/nationalid/internal/auth"
	appcontext "github.com/cradoe/nationalid/internal/context"
	"github.com/cradoe/nationalid/internal/errHandler"
	"github.com/cradoe/nationalid/internal/file"
	"github.com/cradoe/nationalid/internal/helper"
	"github.com/cradoe/nationalid/internal/metrics"
	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/numbering"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/request"
	"github.com/cradoe/nationalid/internal/response"
	"github.com/cradoe/nationalid/internal/stream"
	"github.com/cradoe/nationalid/internal/validator"
	"github.com/cradoe/nationalid/internal/workflow"
)

const maxUploadBytes = 10 << 20 // 10 MB

var (
	errOfficerIDMissing     = errors.New("officer ID missing")
	errUnapprovedOfficer    = errors.New("invalid or unapproved officer")
	errInvalidUpload        = errors.New("invalid request data")
	errInvalidSupportingDoc = errors.New("supportingDocuments must be valid JSON")
)

// documentTypes maps the upload form keys of a new application to document types.
// Unknown keys are recorded under their own name.
var documentTypes = map[string]string{
	"passportPhoto":    "passport_photo",
	"birthCertificate": "birth_certificate",
	"parentsId":        "parent_id_front",
}

// lostIDDocuments are the only uploads a lost-ID application accepts.
var lostIDDocuments = []string{"ob_photo", "passport_photo", "birth_certificate"}

type ApplicationHandler struct {
	ApplicationRepo repository.ApplicationRepository
	OfficerRepo     repository.OfficerRepository
	ActivityRepo    repository.ActivityRepository
	Storage         file.Storage
	Publisher       stream.Publisher
	Metrics         *metrics.Metrics
	Helper          helper.BackgroundRunner
	ErrHandler      *errHandler.ErrorRepository
}

func NewApplicationHandler(handler *ApplicationHandler) *ApplicationHandler {
	return &ApplicationHandler{
		ApplicationRepo: handler.ApplicationRepo,
		OfficerRepo:     handler.OfficerRepo,
		ActivityRepo:    handler.ActivityRepo,
		Storage:         handler.Storage,
		Publisher:       handler.Publisher,
		Metrics:         handler.Metrics,
		Helper:          handler.Helper,
		ErrHandler:      handler.ErrHandler,
	}
}

type newApplicationInput struct {
	FullNames       string `json:"fullNames"`
	DateOfBirth     string `json:"dateOfBirth"`
	Gender          string `json:"gender"`
	FatherName      string `json:"fatherName"`
	MotherName      string `json:"motherName"`
	MaritalStatus   string `json:"maritalStatus"`
	HusbandName     string `json:"husbandName"`
	HusbandIDNo     string `json:"husbandIdNo"`
	DistrictOfBirth string `json:"districtOfBirth"`
	Tribe           string `json:"tribe"`
	Clan            string `json:"clan"`
	Family          string `json:"family"`
	HomeDistrict    string `json:"homeDistrict"`
	Division        string `json:"division"`
	Constituency    string `json:"constituency"`
	Location        string `json:"location"`
	SubLocation     string `json:"subLocation"`
	VillageEstate   string `json:"villageEstate"`
	HomeAddress     string `json:"homeAddress"`
	Occupation      string `json:"occupation"`

	SupportingDocuments json.RawMessage `json:"supportingDocuments"`
	// OfficerID arrives as a number from JSON clients and as text from forms.
	OfficerID any `json:"officerId"`
}

func (in *newApplicationInput) fromForm(r *http.Request) error {
	v := r.FormValue
	in.FullNames = v("fullNames")
	in.DateOfBirth = v("dateOfBirth")
	in.Gender = v("gender")
	in.FatherName = v("fatherName")
	in.MotherName = v("motherName")
	in.MaritalStatus = v("maritalStatus")
	in.HusbandName = v("husbandName")
	in.HusbandIDNo = v("husbandIdNo")
	in.DistrictOfBirth = v("districtOfBirth")
	in.Tribe = v("tribe")
	in.Clan = v("clan")
	in.Family = v("family")
	in.HomeDistrict = v("homeDistrict")
	in.Division = v("division")
	in.Constituency = v("constituency")
	in.Location = v("location")
	in.SubLocation = v("subLocation")
	in.VillageEstate = v("villageEstate")
	in.HomeAddress = v("homeAddress")
	in.Occupation = v("occupation")

	if officerID := v("officerId"); officerID != "" {
		in.OfficerID = officerID
	}

	if docs := strings.TrimSpace(v("supportingDocuments")); docs != "" {
		if !json.Valid([]byte(docs)) {
			return errInvalidSupportingDoc
		}
		in.SupportingDocuments = json.RawMessage(docs)
	}

	return nil
}

func (in *newApplicationInput) missing() string {
	var required validator.Required
	required.Field("fullNames", in.FullNames)
	required.Field("dateOfBirth", in.DateOfBirth)
	required.Field("gender", in.Gender)
	required.Field("fatherName", in.FatherName)
	required.Field("motherName", in.MotherName)
	required.Field("districtOfBirth", in.DistrictOfBirth)
	required.Field("tribe", in.Tribe)
	required.Field("homeDistrict", in.HomeDistrict)
	required.Field("division", in.Division)
	required.Field("constituency", in.Constituency)
	required.Field("location", in.Location)
	required.Field("subLocation", in.SubLocation)
	required.Field("villageEstate", in.VillageEstate)
	required.Field("occupation", in.Occupation)
	return required.Message()
}

// explicitOfficerID reads the officerId field, if any.
func (in *newApplicationInput) explicitOfficerID() (int64, bool) {
	var s string
	switch v := in.OfficerID.(type) {
	case nil:
		return 0, false
	case float64:
		return int64(v), v > 0
	case string:
		s = strings.TrimSpace(v)
	default:
		s = fmt.Sprint(v)
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// HandleSubmitApplication accepts a new-ID application as JSON or as a
// multipart form carrying the document uploads.
func (h *ApplicationHandler) HandleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	var input newApplicationInput

	if request.IsJSON(r) {
		err := request.DecodeJSON(w, r, &input)
		if err != nil {
			h.ErrHandler.BadRequest(w, r, err)
			return
		}
	} else {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			h.ErrHandler.BadRequest(w, r, errInvalidUpload)
			return
		}
		if err := input.fromForm(r); err != nil {
			h.ErrHandler.BadRequest(w, r, err)
			return
		}
	}

	if msg := input.missing(); msg != "" {
		h.ErrHandler.BadRequest(w, r, errors.New(msg))
		return
	}

	dateOfBirth := normalizeDate(input.DateOfBirth)
	if dateOfBirth == nil {
		h.ErrHandler.FailedValidation(w, r, []string{"Date of birth must be in YYYY-MM-DD format"})
		return
	}

	officerID, ok := h.submittingOfficer(w, r, &input)
	if !ok {
		return
	}

	app := &models.Application{
		OfficerID:           &officerID,
		ApplicationType:     repository.ApplicationTypeNew,
		FullNames:           strings.TrimSpace(input.FullNames),
		DateOfBirth:         dateOfBirth,
		Gender:              optional(input.Gender),
		FatherName:          optional(input.FatherName),
		MotherName:          optional(input.MotherName),
		MaritalStatus:       optional(input.MaritalStatus),
		HusbandName:         optional(input.HusbandName),
		HusbandIDNo:         optional(input.HusbandIDNo),
		DistrictOfBirth:     optional(input.DistrictOfBirth),
		Tribe:               optional(input.Tribe),
		Clan:                optional(input.Clan),
		Family:              optional(input.Family),
		HomeDistrict:        optional(input.HomeDistrict),
		Division:            optional(input.Division),
		Constituency:        optional(input.Constituency),
		Location:            optional(input.Location),
		SubLocation:         optional(input.SubLocation),
		VillageEstate:       optional(input.VillageEstate),
		HomeAddress:         optional(input.HomeAddress),
		Occupation:          optional(input.Occupation),
		SupportingDocuments: input.SupportingDocuments,
	}

	uploads := map[string]*multipart.FileHeader{}
	if r.MultipartForm != nil {
		for key, headers := range r.MultipartForm.File {
			if len(headers) > 0 && headers[0].Filename != "" {
				uploads[key] = headers[0]
			}
		}
	}

	created, ok := h.submit(w, r, app, numbering.NewApplicationPrefix, &documentUploads{
		files: uploads,
		docType: func(key string) string {
			if docType, ok := documentTypes[key]; ok {
				return docType
			}
			return key
		},
	})
	if !ok {
		return
	}

	h.submitted(r, created)

	data := map[string]any{
		"applicationNumber": created.ApplicationNumber,
		"applicationId":     created.ID,
	}

	err := response.JSONCreatedResponse(w, data, "Application submitted successfully")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// submittingOfficer resolves the officer from the bearer token, falling back
// to the officerId field. It writes the error response itself.
func (h *ApplicationHandler) submittingOfficer(w http.ResponseWriter, r *http.Request, input *newApplicationInput) (int64, bool) {
	principal := appcontext.ContextGetPrincipal(r)
	if principal != nil && principal.Role == auth.RoleOfficer {
		if !principal.IsApprovedOfficer() {
			h.ErrHandler.BadRequest(w, r, errUnapprovedOfficer)
			return 0, false
		}
		return principal.ID, true
	}

	officerID, ok := input.explicitOfficerID()
	if !ok {
		h.ErrHandler.BadRequest(w, r, errOfficerIDMissing)
		return 0, false
	}

	officer, found, err := h.OfficerRepo.GetOne(r.Context(), officerID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return 0, false
	}
	if !found || officer.Status != repository.OfficerApprovedStatus {
		h.ErrHandler.BadRequest(w, r, errUnapprovedOfficer)
		return 0, false
	}

	return officer.ID, true
}

// submit records app under prefix, storing its uploads once the number is
// allocated. On failure the stored uploads are deleted again and the error
// response is written.
func (h *ApplicationHandler) submit(w http.ResponseWriter, r *http.Request, app *models.Application, prefix string, uploads *documentUploads) (*models.Application, bool) {
	uploads.h = h
	uploads.r = r

	created, err := h.ApplicationRepo.Submit(r.Context(), app, prefix, uploads.attach())
	if err != nil {
		uploads.discard()

		if errors.Is(err, repository.ErrDuplicate) {
			h.ErrHandler.Conflict(w, r, err)
			return nil, false
		}
		h.ErrHandler.ServerError(w, r, err)
		return nil, false
	}

	return created, true
}

// documentUploads stores the files of one submission and remembers the names
// it saved.
type documentUploads struct {
	h       *ApplicationHandler
	r       *http.Request
	files   map[string]*multipart.FileHeader
	docType func(key string) string
	saved   []string
}

func (u *documentUploads) attach() repository.AttachFunc {
	if len(u.files) == 0 {
		return nil
	}
	return u.store
}

func (u *documentUploads) store(applicationNumber string) ([]models.Document, error) {
	docs := make([]models.Document, 0, len(u.files))

	for key, header := range u.files {
		name := file.DocumentName(applicationNumber, key, header.Filename)

		path, err := u.save(name, header)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", key, err)
		}
		u.saved = append(u.saved, name)

		docs = append(docs, models.Document{
			DocumentType: u.docType(key),
			FilePath:     path,
		})
	}

	return docs, nil
}

func (u *documentUploads) save(name string, header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	return u.h.Storage.Save(u.r.Context(), name, header.Header.Get("Content-Type"), f)
}

// discard deletes everything store saved. It runs even when the client has
// gone away.
func (u *documentUploads) discard() {
	ctx := context.WithoutCancel(u.r.Context())

	for _, name := range u.saved {
		if err := u.h.Storage.Delete(ctx, name); err != nil {
			u.h.ErrHandler.ReportServerError(u.r, err)
		}
	}
	u.saved = nil
}

func (h *ApplicationHandler) submitted(r *http.Request, app *models.Application) {
	h.Metrics.IncApplication(app.ApplicationType)

	activityLogger{repo: h.ActivityRepo, helper: h.Helper}.
		record(r, repository.ActivityLogApplicationEntity, app.ID, "Application "+app.ApplicationNumber+" submitted")

	publish(h.Helper, h.Publisher, r, stream.ApplicationStatusTopic, app.ApplicationNumber,
		applicationEvent(app, "submit", string(workflow.Submitted), ""))
}

// HandleSubmitLostID records a replacement application for a lost card. The
// officer is optional: citizens may file these themselves.
func (h *ApplicationHandler) HandleSubmitLostID(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.ErrHandler.BadRequest(w, r, errInvalidUpload)
		return
	}

	v := r.FormValue

	var required validator.Required
	required.Field("existing_id_number", v("existing_id_number"))
	required.Field("ob_number", v("ob_number"))
	required.Field("full_names", v("full_names"))

	if msg := required.Message(); msg != "" {
		h.ErrHandler.BadRequest(w, r, errors.New(msg))
		return
	}

	var officerID *int64
	if principal := appcontext.ContextGetPrincipal(r); principal.IsApprovedOfficer() {
		officerID = &principal.ID
	}

	app := &models.Application{
		OfficerID:        officerID,
		ApplicationType:  repository.ApplicationTypeRenewal,
		FullNames:        strings.TrimSpace(v("full_names")),
		DateOfBirth:      normalizeDate(v("date_of_birth")),
		Gender:           optional(v("gender")),
		FatherName:       optional(v("father_name")),
		MotherName:       optional(v("mother_name")),
		MaritalStatus:    optional(v("marital_status")),
		DistrictOfBirth:  optional(v("district_of_birth")),
		Tribe:            optional(v("tribe")),
		HomeDistrict:     optional(v("home_district")),
		Division:         optional(v("division")),
		Constituency:     optional(v("constituency")),
		Location:         optional(v("location")),
		SubLocation:      optional(v("sub_location")),
		VillageEstate:    optional(v("village_estate")),
		Occupation:       optional(v("occupation")),
		ExistingIDNumber: optional(v("existing_id_number")),
		RenewalReason:    optional(repository.RenewalReasonLost),
		OBNumber:         optional(v("ob_number")),
	}

	uploads := map[string]*multipart.FileHeader{}
	if r.MultipartForm != nil {
		for _, key := range lostIDDocuments {
			if headers := r.MultipartForm.File[key]; len(headers) > 0 && headers[0].Filename != "" {
				uploads[key] = headers[0]
			}
		}
	}

	created, ok := h.submit(w, r, app, numbering.ReplacementPrefix, &documentUploads{
		files:   uploads,
		docType: func(key string) string { return key },
	})
	if !ok {
		return
	}

	h.submitted(r, created)

	data := map[string]any{
		"applicationNumber": created.ApplicationNumber,
		"applicationId":     created.ID,
	}

	err := response.JSONCreatedResponse(w, data, "Lost ID application submitted successfully")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *ApplicationHandler) HandleTrackApplication(w http.ResponseWriter, r *http.Request) {
	tracking, found, err := h.ApplicationRepo.Track(r.Context(), r.PathValue("application_number"))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFoundMessage(w, r, "Application not found")
		return
	}

	err = response.JSONOkResponse(w, map[string]any{"application": tracking}, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleSearchByIDNumber finds the application that issued an ID number, so
// a lost-ID form can be prefilled.
func (h *ApplicationHandler) HandleSearchByIDNumber(w http.ResponseWriter, r *http.Request) {
	app, found, err := h.ApplicationRepo.FindIssuedByIDNumber(r.Context(), r.PathValue("id_number"))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFoundMessage(w, r, "ID not found or not issued yet")
		return
	}

	err = response.JSONOkResponse(w, map[string]any{"application": app}, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
