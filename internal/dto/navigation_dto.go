package dto

import "github.com/noah-isme/eduportal-api/internal/models"

// NavItem is one entry of the navigation rail.
type NavItem struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	BadgeCount *int   `json:"badge_count,omitempty"`
}

// NavigationResponse is the rail plus the deadline reminder shown beneath it.
type NavigationResponse struct {
	Role             string    `json:"role"`
	Items            []NavItem `json:"items"`
	PendingDeadlines int       `json:"pending_deadlines"`
}

// Render outcomes.
const (
	RenderAllowed  = "allowed"
	RenderFallback = "fallback"
)

// RenderDecision tells the presentation layer which view to draw.
type RenderDecision struct {
	Outcome   string `json:"outcome"`
	View      string `json:"view"`
	Requested string `json:"requested"`
}

// ViewResponse is a routed view with its payload.
type ViewResponse struct {
	Decision RenderDecision `json:"decision"`
	Data     interface{}    `json:"data,omitempty"`
}

// PanelResponse is the content of a static admin panel.
type PanelResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AnalyticsResponse is the analytics panel with the latest audit entries.
type AnalyticsResponse struct {
	PanelResponse
	RecentActivity []models.ActivityLog `json:"recent_activity"`
}
