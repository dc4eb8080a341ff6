package experiment

import (
	"log"

	"manetperf/internal/metrics"
	"manetperf/internal/model"
)

func printResult(printer *log.Logger, row model.ResultRow) {
	printer.Println("Simulation Results:")
	printer.Printf("Nodes: %d\n", row.Nodes)
	printer.Printf("Packet Rate: %d\n", row.PacketRate)
	printer.Printf("Node Speed: %g\n", row.NodeSpeed)
	printer.Printf("Sent Packets: %d\n", row.SentPackets)
	printer.Printf("Throughput: %.3f Kbps\n", row.Throughput)
	printer.Printf("Packet Delivery Ratio: %.4f\n", row.DeliveryRatio)
	printer.Printf("Packet Drop Ratio: %.4f\n", row.DropRatio)
	printer.Printf("Average End-to-End Delay: %.3f ms\n", row.AvgDelay)
}

// PrintSummaries writes one block per parameter point.
func PrintSummaries(printer *log.Logger, summaries []metrics.Summary) {
	if len(summaries) == 0 {
		printer.Println("no results")
		return
	}
	printer.Printf("%-6s  %-10s  %-9s  %-4s  %-16s  %-8s  %-8s  %-10s  %-10s\n",
		"NODES", "RATE", "SPEED", "RUNS", "THROUGHPUT_KBPS", "PDR", "DROP", "DELAY_MS", "P95_MS")
	for _, s := range summaries {
		printer.Printf("%-6d  %-10d  %-9g  %-4d  %-16.3f  %-8.4f  %-8.4f  %-10.3f  %-10.3f\n",
			s.Nodes, s.PacketRate, s.NodeSpeed, s.Runs, s.AvgThroughput,
			s.AvgDeliveryRatio, s.AvgDropRatio, s.AvgDelay, s.P95Delay)
	}
}
