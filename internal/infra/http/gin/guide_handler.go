package ginserver

import (
	"mime/multipart"
	"strings"

	gin "github.com/gin-gonic/gin"

	appguide "bookmytourguide/internal/app/guide"
	domainguide "bookmytourguide/internal/domain/guide"
)

type GuideHandler struct {
	Service *appguide.Service
}

func (h GuideHandler) ListApproved(c *gin.Context) {
	guides, err := h.Service.ListApproved(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]gin.H, 0, len(guides))
	for _, g := range guides {
		out = append(out, guideJSON(g))
	}
	respondOK(c, "guides fetched", out)
}

func (h GuideHandler) Get(c *gin.Context) {
	g, err := h.Service.ByID(c.Request.Context(), domainguide.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "guide fetched", guideJSON(g))
}

func (h GuideHandler) Profile(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	g, err := h.Service.Profile(c.Request.Context(), p.actor())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "profile fetched", guideJSON(g))
}

// UpdateProfile accepts multipart form data so the photo and license files
// can ride along with the profile fields.
func (h GuideHandler) UpdateProfile(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	params := appguide.UpdateProfileParams{
		Name:            c.PostForm("name"),
		Mobile:          c.PostForm("mobile"),
		DOB:             c.PostForm("dob"),
		State:           c.PostForm("state"),
		Country:         c.PostForm("country"),
		Languages:       splitCSV(c.PostForm("languages")),
		Experience:      c.PostForm("experience"),
		Specializations: splitCSV(c.PostForm("specializations")),
		Description:     c.PostForm("description"),
	}
	photo, err := formUpload(c, "photo")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	license, err := formUpload(c, "license")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	g, err := h.Service.UpdateProfile(c.Request.Context(), p.actor(), params, photo, license)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "profile updated", guideJSON(g))
}

type approvalRequest struct {
	Status string `json:"status"`
}

func (h GuideHandler) SetApproval(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	g, err := h.Service.SetApproval(c.Request.Context(), p.actor(), domainguide.ID(c.Param("id")), domainguide.ApprovalStatus(strings.ToLower(req.Status)))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "guide approval updated", guideJSON(g))
}

func formUpload(c *gin.Context, field string) (*appguide.FileUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil // field absent
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	return &appguide.FileUpload{
		Reader:      f,
		ContentType: contentTypeOf(header),
		Filename:    header.Filename,
	}, nil
}

func contentTypeOf(header *multipart.FileHeader) string {
	return header.Header.Get("Content-Type")
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func guideJSON(g *domainguide.Guide) gin.H {
	dates := make([]string, 0, len(g.UnavailableDates))
	for _, d := range g.UnavailableDates {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return gin.H{
		"id":               string(g.ID),
		"user":             string(g.UserID),
		"name":             g.Name,
		"mobile":           g.Mobile,
		"dob":              g.DOB,
		"state":            g.State,
		"country":          g.Country,
		"languages":        g.Languages,
		"experience":       g.Experience,
		"specializations":  g.Specializations,
		"description":      g.Description,
		"photo":            g.PhotoURL,
		"license":          g.LicenseURL,
		"profileComplete":  g.ProfileComplete,
		"approvalStatus":   string(g.Approval),
		"unavailableDates": dates,
	}
}

func guideSummaryJSON(g *domainguide.Guide) gin.H {
	return gin.H{
		"id":     string(g.ID),
		"name":   g.Name,
		"mobile": g.Mobile,
		"photo":  g.PhotoURL,
	}
}
