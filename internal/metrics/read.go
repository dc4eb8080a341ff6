package metrics

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"manetperf/internal/model"
)

// ReadCSV loads result rows from a CSV file.
func ReadCSV(path string) ([]model.ResultRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return readCSV(file)
}

func readCSV(r io.Reader) ([]model.ResultRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	start := 0
	if len(records[0]) > 0 && records[0][0] == Header[0] {
		start = 1
	}

	rows := make([]model.ResultRow, 0, len(records)-start)
	for i := start; i < len(records); i++ {
		row, err := parseRecord(records[i])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid record at line %d", i+1)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseRecord(rec []string) (model.ResultRow, error) {
	if len(rec) < len(Header) {
		return model.ResultRow{}, errors.Errorf("expected %d fields, got %d", len(Header), len(rec))
	}

	var (
		row    model.ResultRow
		floats [5]float64
	)
	nodes, err := strconv.ParseUint(rec[0], 10, 32)
	if err != nil {
		return row, err
	}
	rate, err := strconv.ParseUint(rec[1], 10, 32)
	if err != nil {
		return row, err
	}
	sent, err := strconv.ParseUint(rec[3], 10, 64)
	if err != nil {
		return row, err
	}
	for i, idx := range []int{2, 4, 5, 6, 7} {
		if floats[i], err = strconv.ParseFloat(rec[idx], 64); err != nil {
			return row, errors.Wrap(err, Header[idx])
		}
	}

	return model.ResultRow{
		Nodes:         uint32(nodes),
		PacketRate:    uint32(rate),
		NodeSpeed:     floats[0],
		SentPackets:   sent,
		Throughput:    floats[1],
		DeliveryRatio: floats[2],
		DropRatio:     floats[3],
		AvgDelay:      floats[4],
	}, nil
}
