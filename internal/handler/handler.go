package handler

import (
	"viracoach/internal/service"
	"viracoach/log"

	"go.uber.org/zap"
)

type Handler struct {
	Service *service.Service
}

// configUpdated is set by the config endpoint; the next request that needs
// the service rebuilds it so new keys and tool paths take effect.
var configUpdated bool

func NewHandler() *Handler {
	svc, err := service.NewService(service.KeyOverrides{})
	if err != nil {
		log.GetLogger().Error("failed to build analysis service", zap.Error(err))
		return &Handler{}
	}
	return &Handler{Service: svc}
}

// currentService returns the handler's service, rebuilding it after a config
// change, optionally with request-scoped key overrides.
func (h *Handler) currentService(overrides service.KeyOverrides) (*service.Service, error) {
	if configUpdated || h.Service == nil {
		svc, err := service.NewService(service.KeyOverrides{})
		if err != nil {
			return nil, err
		}
		h.Service = svc
		configUpdated = false
	}

	if overrides == (service.KeyOverrides{}) {
		return h.Service, nil
	}
	return service.NewService(overrides)
}
