package model

import (
	"fmt"
	"time"

	"github.com/google/gopacket"
)

// Direction tells which way a measured flow travels along the path.
type Direction uint8

const (
	ClientToServer Direction = iota
	ServerToClient
)

func (d Direction) String() string {
	switch d {
	case ClientToServer:
		return "client_server"
	case ServerToClient:
		return "server_client"
	default:
		return "unknown"
	}
}

// FlowID identifies the flow an observer attributed a measurement to.
// It is written by the preprocessing as SRC-DST-SPORT-DPORT.
type FlowID struct {
	Network   gopacket.Flow
	Transport gopacket.Flow
}

func (f FlowID) String() string {
	return fmt.Sprintf("%s-%s-%s-%s",
		f.Network.Src(), f.Network.Dst(), f.Transport.Src(), f.Transport.Dst())
}

// MeasurementRecord is one line of an observer file.
// End is the end of the measurement interval and the only ordering key.
type MeasurementRecord struct {
	Flow      FlowID
	Start     time.Time
	End       time.Time
	Direction Direction

	// T bit
	Generation int64
	Reflection int64

	// L bit
	Dropped bool

	// Q and R bit
	Phase   int64
	Count   int64
	Nominal int64
	XValue  int64
}

// Timestamp implements series.Timed.
func (r MeasurementRecord) Timestamp() time.Time {
	return r.End
}

// CounterSample is one ground-truth observation of a segment counter.
type CounterSample struct {
	At      time.Time
	Packets int64
	Loss    int64
}

// Timestamp implements series.Timed.
func (s CounterSample) Timestamp() time.Time {
	return s.At
}
