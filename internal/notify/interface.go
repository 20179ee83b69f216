package notify

import (
	"context"

	"github.com/CosmoTheDev/qgnotify/models"
)

// Channel is implemented by each notification provider.
type Channel interface {
	Name() string
	IsConfigured() bool
	Send(ctx context.Context, p *models.Payload) error
}

// Recorder stores the outcome of each delivery attempt.
type Recorder interface {
	Record(ctx context.Context, d models.Delivery) (int64, error)
}
