package metrics

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"manetperf/internal/model"
)

// Header is the fixed column order of the result file.
var Header = []string{
	"Nodes",
	"PacketRate",
	"NodeSpeed",
	"SentPackets",
	"Throughput",
	"DeliveryRatio",
	"DropRatio",
	"AvgDelay",
}

// AppendRow appends one result row to path, writing the header first when the
// file is empty. Existing content is never rewritten.
func AppendRow(path string, row model.ResultRow) (err error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "could not open result file")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "could not close result file")
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return errors.Wrap(err, "could not stat result file")
	}

	// Render everything first so a failure cannot leave half a row behind.
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if info.Size() == 0 {
		if err := writer.Write(Header); err != nil {
			return err
		}
	}
	if err := writer.Write(record(row)); err != nil {
		return err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	if _, err := file.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "could not append result row")
	}
	return nil
}

// WriteCSV writes a header and rows to w.
func WriteCSV(w io.Writer, rows []model.ResultRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(record(row)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func record(row model.ResultRow) []string {
	return []string{
		strconv.FormatUint(uint64(row.Nodes), 10),
		strconv.FormatUint(uint64(row.PacketRate), 10),
		formatFloat(row.NodeSpeed),
		strconv.FormatUint(row.SentPackets, 10),
		formatFloat(row.Throughput),
		formatFloat(row.DeliveryRatio),
		formatFloat(row.DropRatio),
		formatFloat(row.AvgDelay),
	}
}

// formatFloat uses six significant digits, like a default C++ ostream.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
