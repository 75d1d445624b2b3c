package router

import "net/http"

type IngestionRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

type NotificationRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

type DeviceRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

// New wires the public surface: ingestion behind per-device credentials,
// everything else behind the shared internal credentials.
func New(
	ingestionController IngestionRouteRegistrar,
	notificationController NotificationRouteRegistrar,
	deviceController DeviceRouteRegistrar,
	deviceAuth func(http.Handler) http.Handler,
	internalAuth func(http.Handler) http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()
	registerSwaggerRoutes(mux)

	if ingestionController != nil {
		ingestionController.RegisterRoutes(mux, deviceAuth)
	}
	if notificationController != nil {
		notificationController.RegisterRoutes(mux, internalAuth)
	}
	if deviceController != nil {
		deviceController.RegisterRoutes(mux, internalAuth)
	}

	return mux
}
