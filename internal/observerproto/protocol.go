package observerproto

import "pizzatorio.dev/internal/sim/world"

// Version is the observer protocol version (separate from save file versions).
const Version = "0.1"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeKPI       = "KPI"
)

// Client -> Server. First message on the observer WS connection, and can be
// re-sent to change the sampling cadence.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// EveryTicks asks for one KPI frame per N ticks. Zero means the
	// server default.
	EveryTicks uint64 `json:"every_ticks,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string            `json:"protocol_version"`
	RunID           string            `json:"run_id"`
	Tick            uint64            `json:"tick"`
	WorldParams     WorldParams       `json:"world_params"`
	CatalogDigests  map[string]string `json:"catalog_digests"`
}

type WorldParams struct {
	Width      int   `json:"width"`
	Height     int   `json:"height"`
	Seed       int64 `json:"seed"`
	TickRateHz int   `json:"tick_rate_hz"`
}

// Server -> Client. One sampled KPI frame; the frame's fields are inlined
// next to the envelope's.
type KPIMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	world.KPIFrame
}
