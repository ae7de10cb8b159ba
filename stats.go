package integra

import "github.com/gosatel/integra/pkg/channel"

// Stats is the client-facing alias for a channel's traffic counters.
type Stats = channel.Stats

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot = channel.Snapshot
