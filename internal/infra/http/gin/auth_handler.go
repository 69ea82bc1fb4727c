package ginserver

import (
	gin "github.com/gin-gonic/gin"

	appauth "bookmytourguide/internal/app/auth"
)

type AuthHandler struct {
	Service *appauth.Service
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
	AsGuide  bool   `json:"asGuide"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	result, err := h.Service.Register(c.Request.Context(), appauth.RegisterParams{
		Email:    req.Email,
		Name:     req.Name,
		Mobile:   req.Mobile,
		Password: req.Password,
		AsGuide:  req.AsGuide,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "registered", gin.H{
		"token": result.Token,
		"user":  userSummaryWithRole(result),
	})
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	result, err := h.Service.Login(c.Request.Context(), appauth.LoginParams{Email: req.Email, Password: req.Password})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "logged in", gin.H{
		"token": result.Token,
		"user":  userSummaryWithRole(result),
	})
}

func (h AuthHandler) Logout(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if err := h.Service.Logout(c.Request.Context(), p.Token); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "logged out", nil)
}

func (h AuthHandler) Me(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	respondOK(c, "profile fetched", gin.H{
		"id":    p.ID,
		"email": p.Email,
		"name":  p.Name,
		"role":  p.Role,
	})
}

func userSummaryWithRole(result *appauth.AuthResult) gin.H {
	u := result.User
	return gin.H{
		"id":     string(u.ID),
		"name":   u.Name,
		"email":  u.Email,
		"mobile": u.Mobile,
		"role":   string(u.Role),
	}
}
