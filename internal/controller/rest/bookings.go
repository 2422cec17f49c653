package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

type bookingHandler struct {
	bookings *service.BookingService
}

type createBookingRequest struct {
	DisciplineID int64     `json:"discipline_id" validate:"required,gt=0"`
	Kind         string    `json:"kind" validate:"required,oneof=in_person virtual"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required"`
	Subject      string    `json:"subject" validate:"required,max=120"`
	Description  string    `json:"description" validate:"max=2000"`
}

type editBookingRequest struct {
	DisciplineID *int64     `json:"discipline_id" validate:"omitempty,gt=0"`
	Kind         *string    `json:"kind" validate:"omitempty,oneof=in_person virtual"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
	Subject      *string    `json:"subject" validate:"omitempty,max=120"`
	Description  *string    `json:"description" validate:"omitempty,max=2000"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func (h *bookingHandler) create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var req createBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	booking, err := h.bookings.Create(c.Request().Context(), caller, service.CreateBookingInput{
		DisciplineID: req.DisciplineID,
		Kind:         model.SessionKind(req.Kind),
		ScheduledAt:  req.ScheduledAt,
		Subject:      req.Subject,
		Description:  req.Description,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, booking)
}

func (h *bookingHandler) list(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	view := service.ListView(c.QueryParam("scope"))
	filter, err := parseBookingFilter(c)
	if err != nil {
		return err
	}

	seq, err := h.bookings.List(c.Request().Context(), caller, view, filter)
	if err != nil {
		return err
	}

	items, err := service.Collect(seq)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*model.Booking{}
	}

	return c.JSON(http.StatusOK, listResponse[*model.Booking]{Items: items, Count: len(items)})
}

func (h *bookingHandler) get(c echo.Context) error {
	caller, id, err := callerAndID(c)
	if err != nil {
		return err
	}

	booking, err := h.bookings.Get(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *bookingHandler) edit(c echo.Context) error {
	caller, id, err := callerAndID(c)
	if err != nil {
		return err
	}

	var req editBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := service.EditBookingInput{
		DisciplineID: req.DisciplineID,
		ScheduledAt:  req.ScheduledAt,
		Subject:      req.Subject,
		Description:  req.Description,
	}
	if req.Kind != nil {
		kind := model.SessionKind(*req.Kind)
		in.Kind = &kind
	}

	booking, err := h.bookings.Edit(c.Request().Context(), caller, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *bookingHandler) confirm(c echo.Context) error {
	caller, id, err := callerAndID(c)
	if err != nil {
		return err
	}

	booking, err := h.bookings.Confirm(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *bookingHandler) cancel(c echo.Context) error {
	caller, id, err := callerAndID(c)
	if err != nil {
		return err
	}

	booking, err := h.bookings.Cancel(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *bookingHandler) delete(c echo.Context) error {
	caller, id, err := callerAndID(c)
	if err != nil {
		return err
	}

	if err := h.bookings.Delete(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseBookingFilter(c echo.Context) (model.BookingFilter, error) {
	var f model.BookingFilter

	ids, err := parseIDList(c.QueryParams()["discipline"])
	if err != nil {
		return f, err
	}
	f.DisciplineIDs = ids

	f.Status = model.BookingStatus(c.QueryParam("status"))

	for param, dst := range map[string]**time.Time{
		"date": &f.On,
		"from": &f.After,
		"to":   &f.Before,
	} {
		raw := c.QueryParam(param)
		if raw == "" {
			continue
		}
		day, err := time.Parse(dateLayout, raw)
		if err != nil {
			return f, fmt.Errorf("%s must be YYYY-MM-DD: %w", param, model.ErrValidation)
		}
		*dst = &day
	}

	return f, nil
}

// parseIDList accepts repeated and comma separated ids. No values means nil.
func parseIDList(values []string) ([]int64, error) {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid id %q: %w", part, model.ErrValidation)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: %w", raw, model.ErrValidation)
	}
	return id, nil
}

func callerAndID(c echo.Context) (service.Caller, int64, error) {
	caller, err := callerFrom(c)
	if err != nil {
		return service.Caller{}, 0, err
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		return service.Caller{}, 0, err
	}
	return caller, id, nil
}

func bindAndValidate(c echo.Context, req any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
		return fmt.Errorf("malformed request body: %w", model.ErrValidation)
	}
	return c.Validate(req)
}
