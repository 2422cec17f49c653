package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
	"github.com/labstack/echo/v4"
)

type slotHandler struct {
	slots *service.SlotService
}

type createSlotRequest struct {
	DisciplineID int64            `json:"discipline_id" validate:"required,gt=0"`
	MonitorID    int64            `json:"monitor_id" validate:"required,gt=0"`
	ProfessorID  *int64           `json:"professor_id" validate:"omitempty,gt=0"`
	Weekday      int              `json:"weekday" validate:"required,min=1,max=6"`
	Start        *model.TimeOfDay `json:"start" validate:"required"`
	End          *model.TimeOfDay `json:"end" validate:"required"`
	Location     string           `json:"location" validate:"max=255"`
}

type updateSlotRequest struct {
	DisciplineID *int64           `json:"discipline_id" validate:"omitempty,gt=0"`
	MonitorID    *int64           `json:"monitor_id" validate:"omitempty,gt=0"`
	ProfessorID  *int64           `json:"professor_id" validate:"omitempty,gt=0"`
	Weekday      *int             `json:"weekday" validate:"omitempty,min=1,max=6"`
	Start        *model.TimeOfDay `json:"start"`
	End          *model.TimeOfDay `json:"end"`
	Location     *string          `json:"location" validate:"omitempty,max=255"`
}

func (h *slotHandler) create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var req createSlotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	slot, err := h.slots.Create(c.Request().Context(), caller, &model.RecurringSlot{
		ProfessorID:  req.ProfessorID,
		DisciplineID: req.DisciplineID,
		MonitorID:    req.MonitorID,
		Weekday:      time.Weekday(req.Weekday),
		Start:        *req.Start,
		End:          *req.End,
		Location:     req.Location,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, slot)
}

func (h *slotHandler) update(c echo.Context) error {
	caller, id, err := callerAndID(c)
	if err != nil {
		return err
	}

	var req updateSlotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	patch := model.SlotPatch{
		ProfessorID:  req.ProfessorID,
		DisciplineID: req.DisciplineID,
		MonitorID:    req.MonitorID,
		Start:        *req.Start,
		End:          *req.End,
		Location:     req.Location,
	}
	if req.Weekday != nil {
		wd := time.Weekday(*req.Weekday)
		patch.Weekday = &wd
	}

	slot, err := h.slots.Update(c.Request().Context(), caller, id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slot)
}

func (h *slotHandler) get(c echo.Context) error {
	caller, id, err := callerAndID(c)
	if err != nil {
		return err
	}

	slot, err := h.slots.Get(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slot)
}

func (h *slotHandler) list(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	filter, err := parseSlotFilter(c)
	if err != nil {
		return err
	}

	seq, err := h.slots.List(c.Request().Context(), caller, filter)
	if err != nil {
		return err
	}

	items, err := service.Collect(seq)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*model.RecurringSlot{}
	}

	return c.JSON(http.StatusOK, listResponse[*model.RecurringSlot]{Items: items, Count: len(items)})
}

func parseSlotFilter(c echo.Context) (model.SlotFilter, error) {
	var f model.SlotFilter

	ids, err := parseIDList(c.QueryParams()["discipline"])
	if err != nil {
		return f, err
	}
	f.DisciplineIDs = ids

	if raw := c.QueryParam("monitor"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return f, err
		}
		f.MonitorID = &id
	}

	if raw := c.QueryParam("weekday"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, fmt.Errorf("weekday must be a number: %w", model.ErrValidation)
		}
		wd := time.Weekday(n)
		f.Weekday = &wd
	}

	return f, nil
}
