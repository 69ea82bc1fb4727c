package ginserver

import (
	gin "github.com/gin-gonic/gin"

	appotp "bookmytourguide/internal/app/otp"
)

type OTPHandler struct {
	Service *appotp.Service
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h OTPHandler) Send(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := h.Service.Send(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "verification code sent", nil)
}

func (h OTPHandler) Verify(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := h.Service.Verify(c.Request.Context(), req.Email, req.Code); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "email verified", nil)
}
