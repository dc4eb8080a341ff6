package flowstats

import (
	"encoding/xml"
	"io"
	"math"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"manetperf/internal/model"
)

type flowMonitorDoc struct {
	XMLName    xml.Name         `xml:"FlowMonitor"`
	Stats      []flowStatsEntry `xml:"FlowStats>Flow"`
	Classifier []classifierFlow `xml:"Ipv4FlowClassifier>Flow"`
}

type flowStatsEntry struct {
	FlowID      uint32 `xml:"flowId,attr"`
	TxPackets   uint64 `xml:"txPackets,attr"`
	RxPackets   uint64 `xml:"rxPackets,attr"`
	LostPackets uint64 `xml:"lostPackets,attr"`
	TxBytes     uint64 `xml:"txBytes,attr"`
	RxBytes     uint64 `xml:"rxBytes,attr"`
	DelaySum    string `xml:"delaySum,attr"`
}

type classifierFlow struct {
	FlowID          uint32 `xml:"flowId,attr"`
	SourceAddress   string `xml:"sourceAddress,attr"`
	DestAddress     string `xml:"destinationAddress,attr"`
	Protocol        uint8  `xml:"protocol,attr"`
	SourcePort      uint16 `xml:"sourcePort,attr"`
	DestinationPort uint16 `xml:"destinationPort,attr"`
}

// ReadFlowMonitorFile loads an ns-3 FlowMonitor XML dump.
func ReadFlowMonitorFile(path string) (map[model.FlowID]model.FlowRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open flow monitor output")
	}
	defer file.Close()

	return ReadFlowMonitor(file)
}

// ReadFlowMonitor parses the FlowStats and Ipv4FlowClassifier sections of a
// FlowMonitor XML document. Classifier entries are optional.
func ReadFlowMonitor(r io.Reader) (map[model.FlowID]model.FlowRecord, error) {
	var doc flowMonitorDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "invalid flow monitor document")
	}

	keys := make(map[uint32]model.FlowKey, len(doc.Classifier))
	for _, c := range doc.Classifier {
		key := model.FlowKey{
			Protocol: c.Protocol,
			SrcPort:  c.SourcePort,
			DstPort:  c.DestinationPort,
		}
		if addr, err := netip.ParseAddr(c.SourceAddress); err == nil {
			key.Src = addr
		}
		if addr, err := netip.ParseAddr(c.DestAddress); err == nil {
			key.Dst = addr
		}
		keys[c.FlowID] = key
	}

	flows := make(map[model.FlowID]model.FlowRecord, len(doc.Stats))
	for _, s := range doc.Stats {
		delay, err := ParseTime(s.DelaySum)
		if err != nil {
			return nil, errors.Wrapf(err, "flow %d: delaySum", s.FlowID)
		}
		flows[model.FlowID(s.FlowID)] = model.FlowRecord{
			Key:         keys[s.FlowID],
			TxPackets:   s.TxPackets,
			RxPackets:   s.RxPackets,
			LostPackets: s.LostPackets,
			TxBytes:     s.TxBytes,
			RxBytes:     s.RxBytes,
			DelaySum:    delay,
		}
	}

	return flows, nil
}

var timeUnits = []struct {
	suffix string
	scale  float64
}{
	{"min", float64(time.Minute)},
	{"ns", float64(time.Nanosecond)},
	{"us", float64(time.Microsecond)},
	{"ms", float64(time.Millisecond)},
	{"ps", 1e-3},
	{"fs", 1e-6},
	{"s", float64(time.Second)},
	{"h", float64(time.Hour)},
	{"d", 24 * float64(time.Hour)},
}

// ParseTime converts an ns-3 time attribute such as "+1.5e+09ns" or "+2.5s".
// A missing unit means seconds; an empty string is zero.
func ParseTime(value string) (time.Duration, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, nil
	}
	v = strings.TrimPrefix(v, "+")

	scale := float64(time.Second)
	for _, u := range timeUnits {
		if strings.HasSuffix(v, u.suffix) {
			v = strings.TrimSuffix(v, u.suffix)
			scale = u.scale
			break
		}
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid time %q", value)
	}
	ns := f * scale
	if math.IsNaN(ns) || math.Abs(ns) > math.MaxInt64 {
		return 0, errors.Errorf("time %q out of range", value)
	}
	return time.Duration(math.Round(ns)), nil
}
