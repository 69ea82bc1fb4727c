package ginserver

import (
	"strconv"

	gin "github.com/gin-gonic/gin"

	appcatalog "bookmytourguide/internal/app/catalog"
	domaintour "bookmytourguide/internal/domain/tour"
)

type CatalogHandler struct {
	Service *appcatalog.Service
}

func (h CatalogHandler) List(c *gin.Context) {
	tours, err := h.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]gin.H, 0, len(tours))
	for _, t := range tours {
		out = append(out, tourJSON(t))
	}
	respondOK(c, "packages fetched", out)
}

func (h CatalogHandler) Get(c *gin.Context) {
	t, err := h.Service.ByID(c.Request.Context(), domaintour.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "package fetched", tourJSON(t))
}

func (h CatalogHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	params, images, err := tourForm(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	t, err := h.Service.Create(c.Request.Context(), p.actor(), params, images)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "package created", tourJSON(t))
}

func (h CatalogHandler) Update(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	params, images, err := tourForm(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	t, err := h.Service.Update(c.Request.Context(), p.actor(), domaintour.ID(c.Param("id")), params, images)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "package updated", tourJSON(t))
}

func (h CatalogHandler) Delete(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.actor(), domaintour.ID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "package deleted", nil)
}

func tourForm(c *gin.Context) (appcatalog.TourParams, []appcatalog.ImageUpload, error) {
	price, _ := strconv.ParseFloat(c.PostForm("price"), 64)
	days, _ := strconv.Atoi(c.PostForm("days"))
	nights, _ := strconv.Atoi(c.PostForm("nights"))
	params := appcatalog.TourParams{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Locations:   splitCSV(c.PostForm("locations")),
		Price:       price,
		Days:        days,
		Nights:      nights,
	}

	var images []appcatalog.ImageUpload
	form, err := c.MultipartForm()
	if err != nil {
		// plain form posts without files are fine
		return params, nil, nil
	}
	for _, header := range form.File["images"] {
		f, err := header.Open()
		if err != nil {
			return params, nil, err
		}
		images = append(images, appcatalog.ImageUpload{
			Reader:      f,
			ContentType: contentTypeOf(header),
			Filename:    header.Filename,
		})
	}
	return params, images, nil
}

func tourJSON(t *domaintour.Tour) gin.H {
	return gin.H{
		"id":          string(t.ID),
		"title":       t.Title,
		"description": t.Description,
		"locations":   t.Locations,
		"images":      t.Images,
		"price":       t.Price,
		"days":        t.Days,
		"nights":      t.Nights,
		"createdAt":   t.CreatedAt,
	}
}
