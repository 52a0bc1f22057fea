package protocol

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"Go2NetLoss/internal/model"
	"Go2NetLoss/internal/timestamp"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Paper-eval record tags.
const (
	TagLossCount    = "losscount"
	TagOverallCount = "overallcount"
)

const maxLineSize = 1024 * 1024

// Classifier assigns a direction to flows by their source endpoint.
type Classifier struct {
	client gopacket.Endpoint
}

// NewClassifier creates a classifier for the given client address.
func NewClassifier(clientAddr string) (*Classifier, error) {
	ip := net.ParseIP(clientAddr)
	if ip == nil {
		return nil, fmt.Errorf("invalid client address %q", clientAddr)
	}
	return &Classifier{client: layers.NewIPEndpoint(ip)}, nil
}

// Direction returns ClientToServer for flows sent by the client, ServerToClient otherwise.
func (c *Classifier) Direction(flow model.FlowID) model.Direction {
	if flow.Network.Src() == c.client {
		return model.ClientToServer
	}
	return model.ServerToClient
}

// ParseFlowID decodes the SRC-DST-SPORT-DPORT identifier written by the observers.
func ParseFlowID(s string) (model.FlowID, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 4 {
		return model.FlowID{}, fmt.Errorf("%w: flow id %q: expected 4 fields", model.ErrMalformedRecord, s)
	}

	src, dst := net.ParseIP(parts[0]), net.ParseIP(parts[1])
	if src == nil || dst == nil {
		return model.FlowID{}, fmt.Errorf("%w: flow id %q: bad address", model.ErrMalformedRecord, s)
	}
	srcEp, dstEp := layers.NewIPEndpoint(src), layers.NewIPEndpoint(dst)
	network, err := gopacket.FlowFromEndpoints(srcEp, dstEp)
	if err != nil {
		return model.FlowID{}, fmt.Errorf("%w: flow id %q: %v", model.ErrMalformedRecord, s, err)
	}

	var ports [2]uint16
	for i, p := range parts[2:] {
		v, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return model.FlowID{}, fmt.Errorf("%w: flow id %q: bad port %q", model.ErrMalformedRecord, s, p)
		}
		ports[i] = uint16(v)
	}
	transport, err := gopacket.FlowFromEndpoints(
		layers.NewUDPPortEndpoint(layers.UDPPort(ports[0])),
		layers.NewUDPPortEndpoint(layers.UDPPort(ports[1])),
	)
	if err != nil {
		return model.FlowID{}, fmt.Errorf("%w: flow id %q: %v", model.ErrMalformedRecord, s, err)
	}

	return model.FlowID{Network: network, Transport: transport}, nil
}

// ParseTBit parses
//
//	SRC-DST-SPORT-DPORT,<start>,<end>,Generation: <int>,Reflection: <int>
func ParseTBit(line string, c *Classifier) (model.MeasurementRecord, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 5 {
		return model.MeasurementRecord{}, fmt.Errorf("%w: expected 5 fields, got %d", model.ErrMalformedRecord, len(fields))
	}
	rec, err := parseInterval(fields, c)
	if err != nil {
		return model.MeasurementRecord{}, err
	}
	if rec.Generation, err = parseLabeled(fields[3], "Generation"); err != nil {
		return model.MeasurementRecord{}, err
	}
	if rec.Reflection, err = parseLabeled(fields[4], "Reflection"); err != nil {
		return model.MeasurementRecord{}, err
	}
	return rec, nil
}

// ParseSquareBit parses the Q and R bit format
//
//	SRC-DST-SPORT-DPORT,<start>,<end>,Phase: <int>,Count: <int>,Nominal Length:<int>,X Value:<int>
func ParseSquareBit(line string, c *Classifier) (model.MeasurementRecord, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 7 {
		return model.MeasurementRecord{}, fmt.Errorf("%w: expected 7 fields, got %d", model.ErrMalformedRecord, len(fields))
	}
	rec, err := parseInterval(fields, c)
	if err != nil {
		return model.MeasurementRecord{}, err
	}
	if rec.Phase, err = parseLabeled(fields[3], "Phase"); err != nil {
		return model.MeasurementRecord{}, err
	}
	if rec.Count, err = parseLabeled(fields[4], "Count"); err != nil {
		return model.MeasurementRecord{}, err
	}
	if rec.Nominal, err = parseLabeled(fields[5], "Nominal Length"); err != nil {
		return model.MeasurementRecord{}, err
	}
	if rec.XValue, err = parseLabeled(fields[6], "X Value"); err != nil {
		return model.MeasurementRecord{}, err
	}
	return rec, nil
}

// ParseLBit parses
//
//	SRC-DST-SPORT-DPORT,<ts>,<true|false>
func ParseLBit(line string, c *Classifier) (model.MeasurementRecord, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return model.MeasurementRecord{}, fmt.Errorf("%w: expected 3 fields, got %d", model.ErrMalformedRecord, len(fields))
	}
	flow, err := ParseFlowID(fields[0])
	if err != nil {
		return model.MeasurementRecord{}, err
	}
	at, err := timestamp.Parse(fields[1])
	if err != nil {
		return model.MeasurementRecord{}, err
	}

	rec := model.MeasurementRecord{Flow: flow, Start: at, End: at, Direction: c.Direction(flow)}
	switch strings.TrimSpace(fields[2]) {
	case "true":
		rec.Dropped = true
	case "false":
	default:
		return model.MeasurementRecord{}, fmt.Errorf("%w: bad loss flag %q", model.ErrMalformedRecord, fields[2])
	}
	return rec, nil
}

// ParseCounter parses a ground-truth segment line "<ts>,<cumulative_loss>".
func ParseCounter(line string) (time.Time, int64, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 2 {
		return time.Time{}, 0, fmt.Errorf("%w: expected 2 fields, got %d", model.ErrMalformedRecord, len(fields))
	}
	at, err := timestamp.Parse(fields[0])
	if err != nil {
		return time.Time{}, 0, err
	}
	loss, err := parseInt(fields[1])
	if err != nil {
		return time.Time{}, 0, err
	}
	return at, loss, nil
}

// ParsePaperEval parses "losscount,<ts>,<int>" and "overallcount,<ts>,<int>".
func ParsePaperEval(line string) (string, time.Time, int64, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return "", time.Time{}, 0, fmt.Errorf("%w: expected 3 fields, got %d", model.ErrMalformedRecord, len(fields))
	}
	tag := strings.TrimSpace(fields[0])
	if tag != TagLossCount && tag != TagOverallCount {
		return "", time.Time{}, 0, fmt.Errorf("%w: unknown record tag %q", model.ErrMalformedRecord, tag)
	}
	at, err := timestamp.Parse(fields[1])
	if err != nil {
		return "", time.Time{}, 0, err
	}
	v, err := parseInt(fields[2])
	if err != nil {
		return "", time.Time{}, 0, err
	}
	return tag, at, v, nil
}

// ReadLines calls fn for every non-blank line of the file at path. Errors
// returned by fn are annotated with the file name and line number.
func ReadLines(path string, fn func(line string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read '%s': %w", path, err)
	}
	return nil
}

func parseInterval(fields []string, c *Classifier) (model.MeasurementRecord, error) {
	flow, err := ParseFlowID(fields[0])
	if err != nil {
		return model.MeasurementRecord{}, err
	}
	start, err := timestamp.Parse(fields[1])
	if err != nil {
		return model.MeasurementRecord{}, err
	}
	end, err := timestamp.Parse(fields[2])
	if err != nil {
		return model.MeasurementRecord{}, err
	}
	return model.MeasurementRecord{Flow: flow, Start: start, End: end, Direction: c.Direction(flow)}, nil
}

// parseLabeled reads "<label>:<int>" with optional spaces around the value.
func parseLabeled(field, label string) (int64, error) {
	name, value, ok := strings.Cut(field, ":")
	if !ok || strings.TrimSpace(name) != label {
		return 0, fmt.Errorf("%w: expected %q field, got %q", model.ErrMalformedRecord, label, field)
	}
	return parseInt(value)
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad counter %q", model.ErrMalformedRecord, s)
	}
	return v, nil
}
