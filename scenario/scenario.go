// Package scenario decodes a JSON topology-and-script file into a runnable
// netsim.Network[payload.Sized] plus the list of sends to issue against it.
// It is the layer that knows the scenario JSON format and the on-disk store;
// netsim itself never imports it, so the engine stays usable
// from code that builds topologies programmatically instead of from files.
package scenario

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/netsim-project/netsim/netsim"
	"github.com/netsim-project/netsim/payload"
	"github.com/netsim-project/netsim/units"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NodeSpec declares one node by name with optional ceiling overrides; a
// zero field means "unlimited" (node.Unlimited), matching node.Builder's
// own defaults.
type NodeSpec struct {
	Name              string `json:"name"`
	UploadBandwidth   uint64 `json:"upload_bandwidth,omitempty"`
	DownloadBandwidth uint64 `json:"download_bandwidth,omitempty"`
	UploadBufferMax   uint64 `json:"upload_buffer_max,omitempty"`
	DownloadBufferMax uint64 `json:"download_buffer_max,omitempty"`
}

// LinkSpec declares the symmetric link between two named nodes.
type LinkSpec struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Bandwidth  uint64  `json:"bandwidth"`
	LatencyMs  uint64  `json:"latency_ms"`
	PacketLoss float64 `json:"packet_loss"`
}

// SendSpec schedules one payload.Sized send by node name.
type SendSpec struct {
	From string `json:"from"`
	To   string `json:"to"`
	Size uint64 `json:"size"`
}

// Scenario is the decoded form of a scenario JSON file.
type Scenario struct {
	Name     string     `json:"name"`
	Seed     uint64     `json:"seed"`
	StepMs   uint64     `json:"step_ms"`
	Rounds   uint64     `json:"rounds"`
	Nodes    []NodeSpec `json:"nodes"`
	Links    []LinkSpec `json:"links"`
	Sends    []SendSpec `json:"sends"`
}

// Decode parses raw scenario JSON.
func Decode(raw []byte) (Scenario, error) {
	var s Scenario
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, errors.Wrap(err, "scenario: decode")
	}
	if s.StepMs == 0 {
		return s, errors.New("scenario: step_ms must be nonzero")
	}
	return s, nil
}

// Step returns the scenario's tick duration.
func (s Scenario) Step() time.Duration { return time.Duration(s.StepMs) * time.Millisecond }

// Built is a scenario wired into a live Network, ready to drive.
type Built struct {
	Net   *netsim.Network[payload.Sized]
	Sends []netsim.Packet[payload.Sized]
}

// Build constructs a Network from s: one node per NodeSpec (keyed by
// units.NodeIDFromName so link/send specs can refer to nodes by name),
// one symmetric Link per LinkSpec, and pre-built (but not yet sent)
// packets for every SendSpec.
func Build(s Scenario) (Built, error) {
	net := netsim.New[payload.Sized]()
	net.SetSeed(s.Seed)

	ids := make(map[string]units.NodeID, len(s.Nodes))
	for _, ns := range s.Nodes {
		id := units.NodeIDFromName(ns.Name)
		b := net.NewNode().WithID(id)
		if ns.UploadBandwidth > 0 {
			b.UploadBandwidth(units.Bandwidth(ns.UploadBandwidth))
		}
		if ns.DownloadBandwidth > 0 {
			b.DownloadBandwidth(units.Bandwidth(ns.DownloadBandwidth))
		}
		if ns.UploadBufferMax > 0 {
			b.UploadBufferMax(ns.UploadBufferMax)
		}
		if ns.DownloadBufferMax > 0 {
			b.DownloadBufferMax(ns.DownloadBufferMax)
		}
		b.Build()
		ids[ns.Name] = id
	}

	resolve := func(name string) (units.NodeID, error) {
		id, ok := ids[name]
		if !ok {
			return 0, errors.Errorf("scenario: undeclared node %q", name)
		}
		return id, nil
	}

	for _, ls := range s.Links {
		a, err := resolve(ls.A)
		if err != nil {
			return Built{}, err
		}
		b, err := resolve(ls.B)
		if err != nil {
			return Built{}, err
		}
		loss, err := units.NewPacketLoss(ls.PacketLoss)
		if err != nil {
			return Built{}, errors.Wrapf(err, "scenario: link %s-%s", ls.A, ls.B)
		}
		net.ConfigureLink(a, b).
			Bandwidth(units.Bandwidth(ls.Bandwidth)).
			Latency(units.Latency(time.Duration(ls.LatencyMs) * time.Millisecond)).
			PacketLoss(loss).
			Apply()
	}

	built := Built{Net: net}
	for _, ss := range s.Sends {
		from, err := resolve(ss.From)
		if err != nil {
			return Built{}, err
		}
		to, err := resolve(ss.To)
		if err != nil {
			return Built{}, err
		}
		pkt, err := netsim.NewPacketBuilder[payload.Sized](net.PacketIDGenerator()).
			From(from).To(to).Data(payload.Sized(ss.Size)).Build()
		if err != nil {
			return Built{}, errors.Wrapf(err, "scenario: send %s->%s", ss.From, ss.To)
		}
		built.Sends = append(built.Sends, pkt)
	}
	return built, nil
}
