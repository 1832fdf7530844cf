// Package observability wires Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ListingsCreated counts successfully persisted listings.
	ListingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propnest_listings_created_total",
		Help: "Total number of property listings created",
	})

	// ImagesStored counts image files accepted and written to the media dir.
	ImagesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propnest_images_stored_total",
		Help: "Total number of listing images stored",
	})

	// TokenVerifications counts identity checks by outcome
	// (ok, invalid, unavailable).
	TokenVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propnest_token_verifications_total",
		Help: "Total number of bearer token verifications by outcome",
	}, []string{"outcome"})

	// WishlistConflicts counts rejected duplicate wishlist saves.
	WishlistConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propnest_wishlist_conflicts_total",
		Help: "Total number of duplicate wishlist saves rejected",
	})
)
