package staffmail

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	directionFromStaff = "from_staff"
	directionFromUser  = "from_user"
)

const (
	outcomeRelayed        = "relayed"
	outcomeUnresolved     = "unresolved"
	outcomeDeliveryFailed = "delivery_failed"
	outcomeError          = "error"
)

var (
	// RelaysTotal is the total number of relay attempts.
	RelaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffmail_relays_total",
			Help: "Total number of staffmail relay attempts",
		},
		[]string{"direction", "outcome"},
	)

	// RelayDuration is the duration of a relay.
	RelayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "staffmail_relay_duration",
			Help: "Duration of a staffmail relay",
		},
		[]string{"direction"},
	)

	// TicketsOpened is the total number of opened tickets.
	TicketsOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffmail_tickets_opened_total",
			Help: "Total number of opened staffmails",
		},
		[]string{"category", "mode"},
	)

	// TicketsClosed is the total number of closed tickets.
	TicketsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffmail_tickets_closed_total",
			Help: "Total number of closed staffmails",
		},
		[]string{"notified"},
	)
)
