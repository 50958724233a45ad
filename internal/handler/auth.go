package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cradoe/nationalid/internal/auth"
	"github.com/cradoe/nationalid/internal/errHandler"
	"github.com/cradoe/nationalid/internal/helper"
	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/request"
	"github.com/cradoe/nationalid/internal/response"
	"github.com/cradoe/nationalid/internal/validator"

	"github.com/cradoe/gopass"
)

const (
	ActivityLogSignupDescription      = "Officer signed up"
	ActivityLogLoginDescription       = "Logged in"
	ActivityLogFailedLoginDescription = "Failed login attempt"

	invalidCredentialsMessage = "Invalid credentials"
	suspendedAccountMessage   = "Account suspended. Contact admin."
	unapprovedAccountMessage  = "Account not approved by admin"
)

var (
	errDuplicateOfficer         = errors.New("officer with this ID number or email already exists")
	errEmailPasswordRequired    = errors.New("email and password are required")
	errUsernamePasswordRequired = errors.New("username and password are required")
)

type AuthHandler struct {
	OfficerRepo  repository.OfficerRepository
	AdminRepo    repository.AdminRepository
	ActivityRepo repository.ActivityRepository
	Tokens       *auth.TokenIssuer
	Helper       helper.BackgroundRunner
	ErrHandler   *errHandler.ErrorRepository
}

func NewAuthHandler(handler *AuthHandler) *AuthHandler {
	return &AuthHandler{
		OfficerRepo:  handler.OfficerRepo,
		AdminRepo:    handler.AdminRepo,
		ActivityRepo: handler.ActivityRepo,
		Tokens:       handler.Tokens,
		Helper:       handler.Helper,
		ErrHandler:   handler.ErrHandler,
	}
}

func (h *AuthHandler) activity() activityLogger {
	return activityLogger{repo: h.ActivityRepo, helper: h.Helper}
}

// Officers sign themselves up and wait in "pending" until an admin approves them.
func (h *AuthHandler) HandleOfficerSignup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDNumber     string `json:"idNumber"`
		Email        string `json:"email"`
		PhoneNumber  string `json:"phoneNumber"`
		FullName     string `json:"fullName"`
		Station      string `json:"station"`
		Constituency string `json:"constituency"`
		Password     string `json:"password"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	var required validator.Required
	required.Field("idNumber", input.IDNumber)
	required.Field("email", input.Email)
	required.Field("phoneNumber", input.PhoneNumber)
	required.Field("fullName", input.FullName)
	required.Field("station", input.Station)
	required.Field("constituency", input.Constituency)
	required.Field("password", input.Password)

	if msg := required.Message(); msg != "" {
		h.ErrHandler.BadRequest(w, r, errors.New(msg))
		return
	}

	var v validator.Validator
	v.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	if v.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, v.Errors)
		return
	}

	// officers get a strong password from the start
	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.ErrHandler.FailedValidation(w, r, errs)
		return
	}

	exists, err := h.OfficerRepo.CheckIfExists(r.Context(), input.IDNumber, input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if exists {
		h.ErrHandler.BadRequest(w, r, errDuplicateOfficer)
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	officer := &models.Officer{
		IDNumber:       strings.TrimSpace(input.IDNumber),
		Email:          strings.TrimSpace(input.Email),
		PhoneNumber:    strings.TrimSpace(input.PhoneNumber),
		FullName:       strings.TrimSpace(input.FullName),
		Station:        strings.TrimSpace(input.Station),
		Constituency:   strings.TrimSpace(input.Constituency),
		HashedPassword: hashedPassword,
	}

	officerID, err := h.OfficerRepo.Insert(r.Context(), officer)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		// lost a race with a concurrent signup for the same id number or email
		h.ErrHandler.BadRequest(w, r, errDuplicateOfficer)
		return
	case err != nil:
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.activity().recordAs(r, auth.RoleOfficer, officerID, repository.ActivityLogOfficerEntity, officerID, ActivityLogSignupDescription)

	message := "Application submitted successfully. Awaiting admin approval."
	err = response.JSONCreatedResponse(w, map[string]any{"id": officerID}, message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleOfficerLogin checks the password before the account status.
func (h *AuthHandler) HandleOfficerLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if !validator.NotBlank(input.Email) || input.Password == "" {
		h.ErrHandler.BadRequest(w, r, errEmailPasswordRequired)
		return
	}

	officer, found, err := h.OfficerRepo.GetByEmail(r.Context(), strings.TrimSpace(input.Email))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.Unauthorized(w, r, invalidCredentialsMessage)
		return
	}

	passwordMatches, err := gopass.ComparePasswordAndHash(input.Password, officer.HashedPassword)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !passwordMatches {
		h.activity().recordAs(r, auth.RoleOfficer, officer.ID, repository.ActivityLogOfficerEntity, officer.ID, ActivityLogFailedLoginDescription)
		h.ErrHandler.Unauthorized(w, r, invalidCredentialsMessage)
		return
	}

	switch officer.Status {
	case repository.OfficerApprovedStatus:
	case repository.OfficerSuspendedStatus:
		h.ErrHandler.Forbidden(w, r, suspendedAccountMessage)
		return
	default:
		h.ErrHandler.Forbidden(w, r, unapprovedAccountMessage)
		return
	}

	token, err := h.Tokens.Issue(officer.ID, auth.RoleOfficer)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.activity().recordAs(r, auth.RoleOfficer, officer.ID, repository.ActivityLogOfficerEntity, officer.ID, ActivityLogLoginDescription)

	data := map[string]any{
		"token":        token.Value,
		"token_expiry": token.Expires.Format(time.RFC3339),
		"officer": map[string]any{
			"id":           officer.ID,
			"email":        officer.Email,
			"fullName":     officer.FullName,
			"station":      officer.Station,
			"constituency": officer.Constituency,
		},
	}

	err = response.JSONOkResponse(w, data, "Login successful", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *AuthHandler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if !validator.NotBlank(input.Username) || input.Password == "" {
		h.ErrHandler.BadRequest(w, r, errUsernamePasswordRequired)
		return
	}

	admin, found, err := h.AdminRepo.GetByUsername(r.Context(), strings.TrimSpace(input.Username))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.Unauthorized(w, r, invalidCredentialsMessage)
		return
	}

	passwordMatches, err := gopass.ComparePasswordAndHash(input.Password, admin.HashedPassword)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !passwordMatches {
		h.activity().recordAs(r, auth.RoleAdmin, admin.ID, repository.ActivityLogAdminEntity, admin.ID, ActivityLogFailedLoginDescription)
		h.ErrHandler.Unauthorized(w, r, invalidCredentialsMessage)
		return
	}

	token, err := h.Tokens.Issue(admin.ID, auth.RoleAdmin)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.activity().recordAs(r, auth.RoleAdmin, admin.ID, repository.ActivityLogAdminEntity, admin.ID, ActivityLogLoginDescription)

	data := map[string]any{
		"token":        token.Value,
		"token_expiry": token.Expires.Format(time.RFC3339),
		"admin": map[string]any{
			"id":       admin.ID,
			"username": admin.Username,
			"fullName": admin.FullName,
		},
	}

	err = response.JSONOkResponse(w, data, "Login successful", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
