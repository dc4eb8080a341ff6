package metrics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"manetperf/internal/model"
)

const wantHeader = "Nodes,PacketRate,NodeSpeed,SentPackets,Throughput,DeliveryRatio,DropRatio,AvgDelay"

func TestAppendRow_WritesHeaderOnce(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	path := filepath.Join(tmp, "task1_result.csv")

	r1 := model.ResultRow{Nodes: 20, PacketRate: 100, NodeSpeed: 5, SentPackets: 37980, Throughput: 12.5, DeliveryRatio: 0.75, DropRatio: 0.25, AvgDelay: 3.5}
	r2 := model.ResultRow{Nodes: 30, PacketRate: 50, NodeSpeed: 10, SentPackets: 28485, Throughput: 9, DeliveryRatio: 0.5, DropRatio: 0.5, AvgDelay: 8}

	if err := AppendRow(path, r1); err != nil {
		t.Fatalf("AppendRow #1: %v", err)
	}
	if err := AppendRow(path, r2); err != nil {
		t.Fatalf("AppendRow #2: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%d\n%s", len(lines), string(data))
	}
	if lines[0] != wantHeader {
		t.Fatalf("header=%q", lines[0])
	}
	if lines[1] != "20,100,5,37980,12.5,0.75,0.25,3.5" {
		t.Fatalf("row 1=%q", lines[1])
	}
	if lines[2] != "30,50,10,28485,9,0.5,0.5,8" {
		t.Fatalf("row 2=%q", lines[2])
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Fatalf("file not newline-terminated")
	}
}

func TestAppendRow_HeaderOnceForManyRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "many.csv")
	const n = 25
	for i := 0; i < n; i++ {
		if err := AppendRow(path, model.ResultRow{Nodes: uint32(i)}); err != nil {
			t.Fatalf("AppendRow %d: %v", i, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.Count(string(data), wantHeader); got != 1 {
		t.Fatalf("headers=%d", got)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != n+1 {
		t.Fatalf("lines=%d", len(lines))
	}
}

func TestAppendRow_KeepsExistingContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "existing.csv")
	prior := "Nodes,PacketRate,NodeSpeed,SentPackets,Throughput,DeliveryRatio,DropRatio,AvgDelay\n10,100,5,100,1,1,0,2\n"
	if err := os.WriteFile(path, []byte(prior), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := AppendRow(path, model.ResultRow{Nodes: 11}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), prior) {
		t.Fatalf("prior content changed:\n%s", string(data))
	}
	if got := strings.Count(string(data), "Nodes,"); got != 1 {
		t.Fatalf("headers=%d", got)
	}
}

func TestAppendRow_OpenFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing-dir", "out.csv")
	if err := AppendRow(path, model.ResultRow{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rows := []model.ResultRow{{Nodes: 20, PacketRate: 100, NodeSpeed: 2.5, SentPackets: 10, Throughput: 0.256, DeliveryRatio: 1, AvgDelay: 100}}
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := wantHeader + "\n20,100,2.5,10,0.256,1,0,100\n"
	if buf.String() != want {
		t.Fatalf("got %q", buf.String())
	}
}

func TestFormatFloat(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		5:          "5",
		0.256:      "0.256",
		1.0 / 3.0:  "0.333333",
		123.456789: "123.457",
		0:          "0",
	}
	for in, want := range cases {
		if got := formatFloat(in); got != want {
			t.Fatalf("formatFloat(%v)=%q want %q", in, got, want)
		}
	}
}
