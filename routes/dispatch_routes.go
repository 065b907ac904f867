package routes

import (
	"godeliver/internal/handlers"
	"godeliver/internal/middleware"
	"godeliver/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// SetupDispatchRoutes sets up routes for order dispatch and driver assignment
func SetupDispatchRoutes(r *gin.RouterGroup, dispatchHandler *handlers.DispatchHandler, wsHandler *websocket.Handler, jwtSecret string) {
	orders := r.Group("/dispatch/orders")
	orders.Use(middleware.AuthRequired(jwtSecret))
	{
		// Acceptance race: called by the driver app or a trusted backend
		// relaying the tap, so both roles pass.
		orders.POST("/:id/accept", middleware.DispatcherRequired(), dispatchHandler.AcceptOrderFCFS)

		// Rejection is always the authenticated driver's own action.
		orders.POST("/:id/reject", middleware.DriverRequired(), dispatchHandler.RejectOrder)

		// Admin overrides of the broadcast flow.
		orders.POST("/:id/assign", middleware.AdminRequired(), dispatchHandler.ManualAssignDriver)
		orders.POST("/:id/remove-driver", middleware.AdminRequired(), dispatchHandler.ManualRemoveDriver)
		orders.GET("/:id/available-drivers", middleware.AdminRequired(), dispatchHandler.GetAvailableDrivers)
	}

	// Live dispatch event stream for admin dashboards.
	events := r.Group("/dispatch/events")
	events.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		events.GET("/ws", wsHandler.HandleWebSocket)
	}
}
