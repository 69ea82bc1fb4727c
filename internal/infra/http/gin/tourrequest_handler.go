package ginserver

import (
	"strings"

	gin "github.com/gin-gonic/gin"

	apptourrequest "bookmytourguide/internal/app/tourrequest"
	domaintourrequest "bookmytourguide/internal/domain/tourrequest"
)

type TourRequestHandler struct {
	Service *apptourrequest.Service
}

type createTourRequestBody struct {
	Destination string  `json:"destination"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	GroupSize   int     `json:"groupSize"`
	Budget      float64 `json:"budget"`
	Notes       string  `json:"notes"`
}

func (h TourRequestHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createTourRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	r, err := h.Service.Create(c.Request.Context(), p.actor(), apptourrequest.CreateParams{
		Destination: req.Destination,
		StartDate:   start,
		EndDate:     end,
		GroupSize:   req.GroupSize,
		Budget:      req.Budget,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "tour request submitted", tourRequestJSON(r))
}

func (h TourRequestHandler) ListMine(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	items, err := h.Service.ListMine(c.Request.Context(), p.actor())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "tour requests fetched", tourRequestsJSON(items))
}

func (h TourRequestHandler) ListAll(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	items, err := h.Service.ListAll(c.Request.Context(), p.actor())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "tour requests fetched", tourRequestsJSON(items))
}

type tourRequestStatusBody struct {
	Status string `json:"status"`
}

func (h TourRequestHandler) SetStatus(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	var req tourRequestStatusBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	r, err := h.Service.SetStatus(c.Request.Context(), p.actor(), domaintourrequest.ID(c.Param("id")), domaintourrequest.Status(strings.TrimSpace(req.Status)))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "tour request updated", tourRequestJSON(r))
}

func tourRequestJSON(r *domaintourrequest.Request) gin.H {
	return gin.H{
		"id":          string(r.ID),
		"user":        string(r.UserID),
		"destination": r.Destination,
		"startDate":   r.StartDate.Format("2006-01-02"),
		"endDate":     r.EndDate.Format("2006-01-02"),
		"groupSize":   r.GroupSize,
		"budget":      r.Budget,
		"notes":       r.Notes,
		"status":      string(r.Status),
		"createdAt":   r.CreatedAt,
	}
}

func tourRequestsJSON(items []*domaintourrequest.Request) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, r := range items {
		out = append(out, tourRequestJSON(r))
	}
	return out
}
