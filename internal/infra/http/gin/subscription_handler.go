package ginserver

import (
	gin "github.com/gin-gonic/gin"

	appsub "bookmytourguide/internal/app/subscription"
	domainsub "bookmytourguide/internal/domain/subscription"
)

type SubscriptionHandler struct {
	Service *appsub.Service
}

type planBody struct {
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	DurationDays int      `json:"durationDays"`
	Features     []string `json:"features"`
}

func (h SubscriptionHandler) List(c *gin.Context) {
	plans, err := h.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]gin.H, 0, len(plans))
	for _, p := range plans {
		out = append(out, planJSON(p))
	}
	respondOK(c, "plans fetched", out)
}

func (h SubscriptionHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	var req planBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	plan, err := h.Service.Create(c.Request.Context(), p.actor(), planParams(req))
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "plan created", planJSON(plan))
}

func (h SubscriptionHandler) Update(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	var req planBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	plan, err := h.Service.Update(c.Request.Context(), p.actor(), domainsub.ID(c.Param("id")), planParams(req))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "plan updated", planJSON(plan))
}

func (h SubscriptionHandler) Delete(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.actor(), domainsub.ID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "plan deleted", nil)
}

func planParams(req planBody) appsub.PlanParams {
	return appsub.PlanParams{
		Name:         req.Name,
		Price:        req.Price,
		DurationDays: req.DurationDays,
		Features:     req.Features,
	}
}

func planJSON(p *domainsub.Plan) gin.H {
	return gin.H{
		"id":           string(p.ID),
		"name":         p.Name,
		"price":        p.Price,
		"durationDays": p.DurationDays,
		"features":     p.Features,
		"createdAt":    p.CreatedAt,
	}
}
