// pms-emulator serves synthetic PMS5003 frames over TCP so the daemon
// can be bench-tested without hardware. Point a sensor's hostname/port
// at it instead of a serial device.
package main

import (
	"flag"
	"log"
	"math"
	"math/rand"
	"net"
	"time"

	"github.com/airshed/airshed/internal/sensors/pms"
)

func main() {
	var (
		port     = flag.String("port", "8123", "TCP port to listen on")
		interval = flag.Duration("interval", time.Second, "Interval between frames")
		corrupt  = flag.Float64("corrupt", 0, "Fraction of frames to corrupt (0..1), for decoder testing")
	)
	flag.Parse()

	log.Printf("PMS5003 emulator listening on port %s, frame every %v", *port, *interval)

	listener, err := net.Listen("tcp", ":"+*port)
	if err != nil {
		log.Fatal("Failed to listen:", err)
	}
	defer listener.Close()

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("Failed to accept connection: %v", err)
			continue
		}

		log.Printf("Client connected from %s", conn.RemoteAddr())
		go handleConnection(conn, *interval, *corrupt)
	}
}

func handleConnection(conn net.Conn, interval time.Duration, corrupt float64) {
	defer conn.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		frame := pms.Encode(generateReading())
		if rand.Float64() < corrupt {
			// Flip one payload bit so the checksum no longer matches
			frame[10] ^= 0x01
			log.Printf("sent corrupted frame")
		}
		if _, err := conn.Write(frame); err != nil {
			log.Printf("Failed to send frame: %v", err)
			return
		}
		<-ticker.C
	}
}

// generateReading produces a plausible diurnal PM profile with noise
func generateReading() pms.Measurement {
	hour := float64(time.Now().Hour())

	// Morning and evening peaks, cleaner overnight
	base := 8.0 + 6.0*math.Sin(2*math.Pi*(hour-8)/24) + 4.0*math.Sin(4*math.Pi*(hour-7)/24)
	pm25 := math.Max(0, base+rand.Float64()*4-2)

	return pms.Measurement{
		PM1:  uint16(pm25 * 0.7),
		PM25: uint16(pm25),
		PM10: uint16(pm25 * 1.6),
	}
}
