package rest

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	MAX_RESOLVE_TIMEOUT_MS  = 30_000
	MAX_VALIDATE_TIMEOUT_MS = 60_000
)

// GetMetadataQueryParams holds query parameters for GET /metadata/:contract/:token_id
type GetMetadataQueryParams struct {
	TimeoutMs int `form:"timeout_ms,default=0"`
}

// ParseGetMetadataQuery binds and validates the metadata query parameters
func ParseGetMetadataQuery(c *gin.Context) (*GetMetadataQueryParams, error) {
	var params GetMetadataQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}
	if params.TimeoutMs < 0 || params.TimeoutMs > MAX_RESOLVE_TIMEOUT_MS {
		return nil, fmt.Errorf("timeout_ms must be between 0 and %d", MAX_RESOLVE_TIMEOUT_MS)
	}
	return &params, nil
}

// Timeout returns the requested deadline, zero means the service default
func (p *GetMetadataQueryParams) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// ValidateGatewaysQueryParams holds query parameters for GET /gateways/validate/*ref
type ValidateGatewaysQueryParams struct {
	Min       int  `form:"min,default=2"`
	Retry     bool `form:"retry,default=true"`
	TimeoutMs int  `form:"timeout_ms,default=3000"`
}

// ParseValidateGatewaysQuery binds and validates the gateway validation query parameters
// maxGateways is the number of configured gateways
func ParseValidateGatewaysQuery(c *gin.Context, maxGateways int) (*ValidateGatewaysQueryParams, error) {
	var params ValidateGatewaysQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}
	if params.Min < 1 || params.Min > maxGateways {
		return nil, fmt.Errorf("min must be between 1 and %d", maxGateways)
	}
	if params.TimeoutMs < 1 || params.TimeoutMs > MAX_VALIDATE_TIMEOUT_MS {
		return nil, fmt.Errorf("timeout_ms must be between 1 and %d", MAX_VALIDATE_TIMEOUT_MS)
	}
	return &params, nil
}

// Timeout returns the per-attempt probe deadline
func (p *ValidateGatewaysQueryParams) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}
