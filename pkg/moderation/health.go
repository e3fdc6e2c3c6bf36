package moderation

import (
	"context"
	"net/http"
)

// Health reports the status of the moderation service.
func (c *client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.call(ctx, http.MethodGet, healthPath, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
