package drivers

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	log "github.com/nerds-ufes/polka-perf/pkg/logging"
)

// FrameTimeLayout is how tshark prints frame.time_utc.
const FrameTimeLayout = "Jan _2, 2006 15:04:05.000000000 UTC"

// pcapng files open with a section header block.
const ngMagic = 0x0A0D0D0A

var httpMethods = [][]byte{
	[]byte("GET "), []byte("POST "), []byte("PUT "), []byte("DELETE "), []byte("HEAD "),
	[]byte("OPTIONS "), []byte("PATCH "), []byte("CONNECT "), []byte("TRACE "),
}

var httpResponse = []byte("HTTP/1.")

// conversation identifies one direction of a TCP connection.
type conversation struct {
	net, transport gopacket.Flow
}

// segments records the sequence numbers already seen per direction, so a
// retransmitted segment is counted once.
type segments map[conversation]map[uint32]struct{}

func (s segments) first(key conversation, seq uint32) bool {
	seen, ok := s[key]
	if !ok {
		seen = map[uint32]struct{}{}
		s[key] = seen
	}
	if _, dup := seen[seq]; dup {
		return false
	}
	seen[seq] = struct{}{}
	return true
}

// openCapture returns a packet source for a pcap or pcapng file.
func openCapture(r io.Reader) (*gopacket.PacketSource, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("capture too short: %w", err)
	}
	if binary.LittleEndian.Uint32(magic) == ngMagic {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, err
		}
		return gopacket.NewPacketSource(ng, ng.LinkType()), nil
	}
	pr, err := pcapgo.NewReader(br)
	if err != nil {
		return nil, err
	}
	return gopacket.NewPacketSource(pr, pr.LinkType()), nil
}

func isRequest(payload []byte) bool {
	for _, m := range httpMethods {
		if bytes.HasPrefix(payload, m) {
			return true
		}
	}
	return false
}

// Run decodes the capture and pairs each HTTP/1.x response with the oldest pending
// request of its connection. Retransmitted segments are ignored. Every paired response prints its frame time and the
// request to response delta, as tshark's http.time does.
func (n *native) Run(capture string) (bytes.Buffer, error) {
	var stdout bytes.Buffer
	f, err := os.Open(capture)
	if err != nil {
		return stdout, fmt.Errorf("capture %s: %w", capture, err)
	}
	defer f.Close()
	src, err := openCapture(f)
	if err != nil {
		return stdout, fmt.Errorf("unable to read %s: %w", capture, err)
	}
	src.DecodeOptions = gopacket.DecodeOptions{Lazy: true}

	pending := map[conversation][]time.Time{}
	seen := segments{}
	packets, unmatched, retransmitted := 0, 0, 0
	for {
		packet, err := src.NextPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			log.WithFile(capture).Warn("Capture is truncated, keeping the packets read so far")
			break
		}
		if err != nil {
			return stdout, fmt.Errorf("reading %s: %w", capture, err)
		}
		packets++
		netLayer := packet.NetworkLayer()
		tcp, ok := packet.TransportLayer().(*layers.TCP)
		if netLayer == nil || !ok || len(tcp.Payload) == 0 {
			continue
		}
		ts := packet.Metadata().Timestamp
		switch {
		case isRequest(tcp.Payload):
			key := conversation{netLayer.NetworkFlow(), tcp.TransportFlow()}
			if !seen.first(key, tcp.Seq) {
				retransmitted++
				continue
			}
			pending[key] = append(pending[key], ts)
		case bytes.HasPrefix(tcp.Payload, httpResponse):
			if !seen.first(conversation{netLayer.NetworkFlow(), tcp.TransportFlow()}, tcp.Seq) {
				retransmitted++
				continue
			}
			key := conversation{netLayer.NetworkFlow().Reverse(), tcp.TransportFlow().Reverse()}
			queue := pending[key]
			if len(queue) == 0 {
				unmatched++
				continue
			}
			pending[key] = queue[1:]
			fmt.Fprintf(&stdout, "%s\t%.9f\n", ts.UTC().Format(FrameTimeLayout), ts.Sub(queue[0]).Seconds())
		}
	}
	log.WithFile(capture).Debugf("Decoded %d packets, %d responses without a request, %d retransmitted segments ignored",
		packets, unmatched, retransmitted)
	return stdout, nil
}
