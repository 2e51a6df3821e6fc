package notify

import (
	"strings"

	"docportal/internal/domain/models"
)

// Router classifies raw notification rows into a semantic type and a click
// target. Classification is business logic, not presentation: the rules live
// in one embedded artifact (config/routing.yaml) and are re-applied on every
// read so they cover old rows retroactively.
type Router struct {
	rules      []routingRule
	fallback   models.NotificationType
	structural map[string]models.NotificationType
}

// NewRouter creates a router from the embedded routing rules.
func NewRouter() (*Router, error) {
	cfg, err := loadRoutingConfig()
	if err != nil {
		return nil, err
	}
	return &Router{
		rules:      cfg.Rules,
		fallback:   models.NotificationType(cfg.Fallback),
		structural: cfg.structuralSet(),
	}, nil
}

// Classify resolves the semantic type of a notification. The stored raw type
// wins when it names a structural account type; otherwise the first matching
// substring rule decides, and the fallback covers everything else.
func (r *Router) Classify(n *models.Notification) models.NotificationType {
	if n.RawType != nil {
		if t, ok := r.structural[*n.RawType]; ok {
			return t
		}
	}

	message := strings.ToLower(n.Message)
	for _, rule := range r.rules {
		if strings.Contains(message, rule.Contains) {
			return models.NotificationType(rule.Type)
		}
	}
	return r.fallback
}

// ReferenceID resolves the click target: the related document when there is
// one, else the notification's own id. Never empty, which spares the UI a
// null check on every click.
func (r *Router) ReferenceID(n *models.Notification) string {
	if n.RelatedDocumentID != nil && *n.RelatedDocumentID != "" {
		return *n.RelatedDocumentID
	}
	return n.ID
}

// Decorate fills the derived fields of a notification in place.
func (r *Router) Decorate(n *models.Notification) {
	n.Type = r.Classify(n)
	n.ReferenceID = r.ReferenceID(n)
}
