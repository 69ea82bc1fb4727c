package ginserver

import (
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	appbooking "bookmytourguide/internal/app/booking"
	domainbooking "bookmytourguide/internal/domain/booking"
	domainguide "bookmytourguide/internal/domain/guide"
	domaintour "bookmytourguide/internal/domain/tour"
	domainuser "bookmytourguide/internal/domain/user"
)

type BookingHandler struct {
	Service *appbooking.Service
}

type createBookingRequest struct {
	TourID           string `json:"tourId"`
	GuideID          string `json:"guideId"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	NumberOfTourists int    `json:"numberOfTourists"`
	PaymentID        string `json:"paymentId"`
}

type createOrderRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpayOrderId"`
	PaymentID string `json:"razorpayPaymentId"`
	Signature string `json:"razorpaySignature"`
	createBookingRequest
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type assignSubstituteRequest struct {
	SubstituteGuideID string `json:"substituteGuideId"`
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	params, err := req.toParams()
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	b, err := h.Service.Create(c.Request.Context(), p.actor(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "booking created", bookingJSON(b))
}

func (h BookingHandler) CreateOrder(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	order, err := h.Service.CreateOrder(c.Request.Context(), req.Amount, req.Currency, req.Receipt)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "order created", gin.H{
		"id":       order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"receipt":  order.Receipt,
		"status":   order.Status,
	})
}

func (h BookingHandler) VerifyAndCreate(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	params, err := req.createBookingRequest.toParams()
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if params.PaymentID == "" {
		params.PaymentID = req.PaymentID
	}
	b, err := h.Service.VerifyAndCreate(c.Request.Context(), p.actor(), appbooking.VerifyParams{
		OrderID:      req.OrderID,
		PaymentID:    req.PaymentID,
		Signature:    req.Signature,
		CreateParams: params,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "payment verified, booking created", bookingJSON(b))
}

func (h BookingHandler) ListAll(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	views, err := h.Service.ListAll(c.Request.Context(), p.actor())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "bookings fetched", viewsJSON(views))
}

func (h BookingHandler) ListMine(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	views, err := h.Service.ListMine(c.Request.Context(), p.actor())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "bookings fetched", viewsJSON(views))
}

func (h BookingHandler) ListForGuide(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	views, err := h.Service.ListForGuide(c.Request.Context(), p.actor())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "bookings fetched", viewsJSON(views))
}

func (h BookingHandler) Get(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	view, err := h.Service.GetByID(c.Request.Context(), p.actor(), domainbooking.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "booking fetched", viewJSON(view))
}

func (h BookingHandler) UpdateStatus(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	b, err := h.Service.UpdateStatus(c.Request.Context(), p.actor(), domainbooking.ID(c.Param("id")), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "booking status updated", bookingJSON(b))
}

func (h BookingHandler) Cancel(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	b, err := h.Service.Cancel(c.Request.Context(), p.actor(), domainbooking.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "booking cancelled and advance refunded", bookingJSON(b))
}

func (h BookingHandler) AssignSubstitute(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req assignSubstituteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	b, err := h.Service.AssignSubstitute(c.Request.Context(), p.actor(), domainbooking.ID(c.Param("id")), domainguide.ID(req.SubstituteGuideID))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "substitute guide assigned", bookingJSON(b))
}

func (h BookingHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.actor(), domainbooking.ID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "booking deleted", nil)
}

func (r createBookingRequest) toParams() (appbooking.CreateParams, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return appbooking.CreateParams{}, err
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return appbooking.CreateParams{}, err
	}
	return appbooking.CreateParams{
		TourID:           domaintour.ID(r.TourID),
		GuideID:          domainguide.ID(r.GuideID),
		StartDate:        start,
		EndDate:          end,
		NumberOfTourists: r.NumberOfTourists,
		PaymentID:        r.PaymentID,
	}, nil
}

// parseDate accepts both calendar dates and full timestamps; either way
// only the calendar day matters downstream.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func bookingJSON(b *domainbooking.Booking) gin.H {
	out := gin.H{
		"id":               string(b.ID),
		"tour":             string(b.TourID),
		"guide":            string(b.GuideID),
		"user":             string(b.UserID),
		"startDate":        b.Range.Start.Format("2006-01-02"),
		"endDate":          b.Range.End.Format("2006-01-02"),
		"numberOfTourists": b.NumberOfTourists,
		"totalPrice":       b.TotalPrice,
		"advanceAmount":    b.AdvanceAmount,
		"paymentId":        b.PaymentID,
		"status":           string(b.Status),
		"paymentStatus":    string(b.PaymentStatus),
		"createdAt":        b.CreatedAt,
		"updatedAt":        b.UpdatedAt,
	}
	if b.OriginalGuideID != "" {
		out["originalGuide"] = string(b.OriginalGuideID)
	}
	if b.CancelledBy != nil {
		out["cancelledBy"] = gin.H{
			"id":   string(b.CancelledBy.ID),
			"role": string(b.CancelledBy.Role),
			"name": b.CancelledBy.Name,
		}
	}
	return out
}

func viewJSON(v appbooking.View) gin.H {
	out := bookingJSON(v.Booking)
	if v.Tour != nil {
		out["tour"] = tourJSON(v.Tour)
	}
	if v.Guide != nil {
		out["guide"] = guideSummaryJSON(v.Guide)
	}
	if v.OriginalGuide != nil {
		out["originalGuide"] = guideSummaryJSON(v.OriginalGuide)
	}
	if v.User != nil {
		out["user"] = userSummaryJSON(v.User)
	}
	return out
}

func viewsJSON(views []appbooking.View) []gin.H {
	out := make([]gin.H, 0, len(views))
	for _, v := range views {
		out = append(out, viewJSON(v))
	}
	return out
}

func userSummaryJSON(u *domainuser.User) gin.H {
	return gin.H{
		"id":     string(u.ID),
		"name":   u.Name,
		"email":  u.Email,
		"mobile": u.Mobile,
	}
}
