package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/warren/pkg/httputil"
	"github.com/platinummonkey/warren/pkg/middleware"
	"github.com/platinummonkey/warren/pkg/tenants"
)

// createOrganization handles POST /org/create
func (s *Server) createOrganization(w http.ResponseWriter, r *http.Request) {
	var req tenants.CreateOrganizationRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	view, err := s.service.CreateOrganization(ctx, req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, view)
}

// getOrganization handles GET /org/get?organization_name=
func (s *Server) getOrganization(w http.ResponseWriter, r *http.Request) {
	name := httputil.ParseQueryString(r, "organization_name", "")
	if !httputil.RequireNonEmpty(w, name, "organization_name") {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	view, err := s.service.GetOrganization(ctx, name)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, view)
}

// updateOrganization handles PUT /org/update
func (s *Server) updateOrganization(w http.ResponseWriter, r *http.Request) {
	admin := middleware.AdminFromContext(r.Context())
	if admin == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	var req tenants.UpdateOrganizationRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.OrganizationName, "organization_name") {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	view, err := s.service.UpdateOrganization(ctx, req, admin.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, view)
}

// deleteOrganization handles DELETE /org/delete?organization_name=
func (s *Server) deleteOrganization(w http.ResponseWriter, r *http.Request) {
	admin := middleware.AdminFromContext(r.Context())
	if admin == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	name := httputil.ParseQueryString(r, "organization_name", "")
	if !httputil.RequireNonEmpty(w, name, "organization_name") {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.service.DeleteOrganization(ctx, name, admin.ID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// adminLogin handles POST /admin/login
func (s *Server) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req tenants.LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	token, err := s.service.AdminLogin(ctx, req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, token)
}

// writeServiceError maps the typed error taxonomy onto the HTTP surface.
// Conflict maps to 400, which is what existing clients expect.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	kind := tenants.KindOf(err)
	message := err.Error()
	var te *tenants.Error
	if errors.As(err, &te) {
		message = te.Message
	}

	switch kind {
	case tenants.ErrKindConflict, tenants.ErrKindValidation:
		httputil.WriteErrorCode(w, http.StatusBadRequest, message, string(kind))
	case tenants.ErrKindNotFound:
		httputil.WriteErrorCode(w, http.StatusNotFound, message, string(kind))
	case tenants.ErrKindForbidden:
		httputil.WriteErrorCode(w, http.StatusForbidden, message, string(kind))
	case tenants.ErrKindUnauthorized:
		httputil.WriteErrorCode(w, http.StatusUnauthorized, message, string(kind))
	case tenants.ErrKindTransient:
		httputil.WriteErrorCode(w, http.StatusServiceUnavailable, message, string(kind))
	default:
		s.logger.WithError(err).Error("request failed")
		httputil.WriteErrorCode(w, http.StatusInternalServerError, message, string(kind))
	}
}
