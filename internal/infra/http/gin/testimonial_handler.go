package ginserver

import (
	"strconv"

	gin "github.com/gin-gonic/gin"

	apptestimonial "bookmytourguide/internal/app/testimonial"
	domaintestimonial "bookmytourguide/internal/domain/testimonial"
)

type TestimonialHandler struct {
	Service *apptestimonial.Service
}

func (h TestimonialHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	result, err := h.Service.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	items := make([]gin.H, 0, len(result.Items))
	for _, t := range result.Items {
		items = append(items, testimonialJSON(t))
	}
	respondOK(c, "testimonials fetched", gin.H{
		"items": items,
		"total": result.Total,
		"page":  page,
		"limit": limit,
	})
}

func (h TestimonialHandler) Create(c *gin.Context) {
	rating, _ := strconv.Atoi(c.PostForm("rating"))
	params := apptestimonial.CreateParams{
		Author:   c.PostForm("author"),
		Location: c.PostForm("location"),
		Message:  c.PostForm("message"),
		Rating:   rating,
	}
	var video *apptestimonial.VideoUpload
	if header, err := c.FormFile("video"); err == nil {
		f, err := header.Open()
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		video = &apptestimonial.VideoUpload{
			Reader:      f,
			ContentType: contentTypeOf(header),
			Filename:    header.Filename,
		}
	}
	t, err := h.Service.Create(c.Request.Context(), params, video)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "testimonial created", testimonialJSON(t))
}

func (h TestimonialHandler) Delete(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.actor(), domaintestimonial.ID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "testimonial deleted", nil)
}

func testimonialJSON(t *domaintestimonial.Testimonial) gin.H {
	return gin.H{
		"id":        string(t.ID),
		"author":    t.Author,
		"location":  t.Location,
		"message":   t.Message,
		"rating":    t.Rating,
		"video":     t.VideoURL,
		"createdAt": t.CreatedAt,
	}
}
