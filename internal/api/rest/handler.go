package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/nft-metadata-gateway/internal/domain"
	"github.com/feral-file/nft-metadata-gateway/internal/gateway"
	"github.com/feral-file/nft-metadata-gateway/internal/metadata"
	"github.com/feral-file/nft-metadata-gateway/internal/uri"
)

const (
	HeaderMetadataSource    = "X-Metadata-Source"
	HeaderMetadataCached    = "X-Metadata-Cached"
	HeaderMetadataGateway   = "X-Metadata-Gateway"
	HeaderMetadataLatencyMs = "X-Metadata-Latency-Ms"

	healthCheckTimeout = 2 * time.Second
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler,MetadataResolver=MockMetadataResolver,GatewayValidator=MockGatewayValidator,HealthChecker=MockHealthChecker
type Handler interface {
	// GetMetadata returns the metadata document of a token
	// GET /api/v1/metadata/:contract/:token_id?timeout_ms=<ms>
	GetMetadata(c *gin.Context)

	// ValidateGateways reports which gateways serve a CID path
	// GET /api/v1/gateways/validate/*ref?min=<n>&retry=<bool>&timeout_ms=<ms>
	ValidateGateways(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// MetadataResolver resolves token metadata through the fallback chain
type MetadataResolver interface {
	Resolve(ctx context.Context, contractAddress, tokenID, publicBaseURL string, timeout time.Duration) (*domain.FallbackResult, error)
}

// GatewayValidator checks content propagation across gateways
type GatewayValidator interface {
	ValidateMultiGateway(ctx context.Context, ref string, minGateways int, timeout time.Duration, allowRetry bool) gateway.ValidationResult
}

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Config holds handler configuration
type Config struct {
	PublicBaseURL string
	GatewayCount  int
}

// handler implements the Handler interface
type handler struct {
	config    Config
	resolver  MetadataResolver
	validator GatewayValidator
	health    HealthChecker
}

// NewHandler creates a new REST API handler
func NewHandler(cfg Config, resolver MetadataResolver, validator GatewayValidator, health HealthChecker) Handler {
	if cfg.GatewayCount < 1 {
		cfg.GatewayCount = 1
	}
	return &handler{
		config:    cfg,
		resolver:  resolver,
		validator: validator,
		health:    health,
	}
}

// WorkingGatewayResponse is one gateway that served the content
type WorkingGatewayResponse struct {
	Gateway string `json:"gateway"`
	URL     string `json:"url"`
}

// ValidateGatewaysResponse is the body of the gateway validation endpoint
type ValidateGatewaysResponse struct {
	Success         bool                     `json:"success"`
	CIDPath         string                   `json:"cid_path"`
	MinGateways     int                      `json:"min_gateways"`
	WorkingGateways []WorkingGatewayResponse `json:"working_gateways"`
	Errors          []string                 `json:"errors"`
	Attempts        int                      `json:"attempts"`
}

// GetMetadata resolves and returns the metadata document of a token
// The document is always well-formed, degraded resolutions yield a placeholder
func (h *handler) GetMetadata(c *gin.Context) {
	contract := c.Param("contract")
	tokenID := c.Param("token_id")

	queryParams, err := ParseGetMetadataQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.resolver.Resolve(c.Request.Context(), contract, tokenID, h.config.PublicBaseURL, queryParams.Timeout())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTokenReference) {
			respondBadRequest(c, "Invalid token reference", err.Error())
			return
		}
		respondInternalError(c, err, "Failed to resolve metadata",
			zap.String("contract", contract),
			zap.String("token_id", tokenID))
		return
	}

	c.Header(HeaderMetadataSource, string(result.Source))
	c.Header(HeaderMetadataCached, strconv.FormatBool(result.Cached))
	c.Header(HeaderMetadataLatencyMs, strconv.FormatInt(result.LatencyMs, 10))
	if result.GatewayUsed != "" {
		c.Header(HeaderMetadataGateway, result.GatewayUsed)
	}
	if result.Source == domain.SourcePlaceholder {
		c.Header("Cache-Control", "no-store")
	} else {
		c.Header("Cache-Control", "public, max-age=60")
	}

	c.JSON(http.StatusOK, metadata.ToDocument(result.Metadata))
}

// ValidateGateways probes every gateway for the CID path in the wildcard
func (h *handler) ValidateGateways(c *gin.Context) {
	ref := strings.TrimPrefix(c.Param("ref"), "/")
	cidPath := uri.NormalizeCIDPath(ref)
	if cidPath == "" || uri.RootCID(cidPath) == "" {
		respondBadRequest(c, "A valid CID is required")
		return
	}

	queryParams, err := ParseValidateGatewaysQuery(c, h.config.GatewayCount)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result := h.validator.ValidateMultiGateway(c.Request.Context(), cidPath, queryParams.Min, queryParams.Timeout(), queryParams.Retry)

	response := ValidateGatewaysResponse{
		Success:         result.Success,
		CIDPath:         cidPath,
		MinGateways:     queryParams.Min,
		WorkingGateways: make([]WorkingGatewayResponse, 0, len(result.WorkingGateways)),
		Errors:          result.Errors,
		Attempts:        result.Attempts,
	}
	if response.Errors == nil {
		response.Errors = []string{}
	}
	for _, m := range result.WorkingGateways {
		response.WorkingGateways = append(response.WorkingGateways, WorkingGatewayResponse{Gateway: m.GatewayName, URL: m.URL})
	}

	c.JSON(http.StatusOK, response)
}

// HealthCheck returns the health status of the API and its store
func (h *handler) HealthCheck(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			respondServiceUnavailable(c, "Store unavailable", err.Error())
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
