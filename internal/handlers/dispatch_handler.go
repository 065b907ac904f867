package handlers

import (
	"errors"

	"godeliver/internal/repositories/interfaces"
	"godeliver/internal/services"
	"godeliver/internal/utils"

	"github.com/gin-gonic/gin"
)

type DispatchHandler struct {
	assignmentService services.AssignmentService
}

func NewDispatchHandler(assignmentService services.AssignmentService) *DispatchHandler {
	return &DispatchHandler{
		assignmentService: assignmentService,
	}
}

type acceptOrderRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
}

// AcceptOrderFCFS resolves the first-come-first-served acceptance race.
// Both outcomes are HTTP 200: losing the race is a normal result the driver
// app renders, not an error.
func (h *DispatchHandler) AcceptOrderFCFS(c *gin.Context) {
	orderID := c.Param("id")

	var request acceptOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.assignmentService.AcceptOrderFCFS(c.Request.Context(), orderID, request.DriverID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if result.Success {
		utils.SuccessResponse(c, "Order accepted", result)
		return
	}
	utils.SuccessResponse(c, result.Reason, result)
}

// RejectOrder records the authenticated driver's refusal of an offer.
func (h *DispatchHandler) RejectOrder(c *gin.Context) {
	orderID := c.Param("id")

	driverID, exists := c.Get("user_id")
	if !exists {
		utils.UnauthorizedResponse(c)
		return
	}

	driverIDStr, ok := driverID.(string)
	if !ok || driverIDStr == "" {
		utils.UnauthorizedResponse(c)
		return
	}

	if err := h.assignmentService.RejectOrder(c.Request.Context(), orderID, driverIDStr); err != nil {
		h.writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Order rejected", gin.H{"success": true})
}

type manualAssignRequest struct {
	DriverID   string `json:"driver_id" binding:"required"`
	AssignedBy string `json:"assigned_by"`
	Reason     string `json:"reason"`
}

// ManualAssignDriver is the admin override of the broadcast/FCFS flow.
func (h *DispatchHandler) ManualAssignDriver(c *gin.Context) {
	orderID := c.Param("id")

	var request manualAssignRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	assignedBy := request.AssignedBy
	if assignedBy == "" {
		if adminID, exists := c.Get("user_id"); exists {
			assignedBy, _ = adminID.(string)
		}
	}

	err := h.assignmentService.ManualAssign(c.Request.Context(), orderID, request.DriverID, assignedBy, request.Reason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver assigned to order", gin.H{
		"order_id":  orderID,
		"driver_id": request.DriverID,
	})
}

type manualRemoveRequest struct {
	Reason string `json:"reason"`
}

// ManualRemoveDriver strips a pending assignment from an order.
func (h *DispatchHandler) ManualRemoveDriver(c *gin.Context) {
	orderID := c.Param("id")

	var request manualRemoveRequest
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	removedBy := ""
	if adminID, exists := c.Get("user_id"); exists {
		removedBy, _ = adminID.(string)
	}

	err := h.assignmentService.ManualRemove(c.Request.Context(), orderID, removedBy, request.Reason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver removed from order", gin.H{"order_id": orderID})
}

// GetAvailableDrivers lists ranked manual-assignment candidates for an order.
func (h *DispatchHandler) GetAvailableDrivers(c *gin.Context) {
	orderID := c.Param("id")
	zoneID := c.Query("zone_id")

	drivers, err := h.assignmentService.GetAvailableDrivers(c.Request.Context(), orderID, zoneID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Available drivers", gin.H{
		"drivers": drivers,
		"total":   len(drivers),
	})
}

// writeServiceError maps service errors onto the dispatch error taxonomy.
// Internal failures stay generic: details go to the log, not the caller.
func (h *DispatchHandler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, interfaces.ErrOrderNotFound):
		utils.NotFoundResponse(c, "Order")
	case errors.Is(err, interfaces.ErrDriverNotFound):
		utils.NotFoundResponse(c, "Driver")
	case errors.Is(err, services.ErrNotADriver), errors.Is(err, services.ErrDriverInactive):
		utils.BadRequestResponse(c, err.Error())
	case errors.Is(err, services.ErrTakeawayOrder):
		utils.PreconditionFailedResponse(c, utils.MsgTakeawayNotDispatched)
	case errors.Is(err, services.ErrOrderNotEligible):
		utils.PreconditionFailedResponse(c, utils.MsgOrderStatusChanged)
	case errors.Is(err, interfaces.ErrPreconditionFailed):
		utils.PreconditionFailedResponse(c, utils.MsgOrderStatusChanged)
	default:
		utils.InternalServerErrorResponse(c)
	}
}
