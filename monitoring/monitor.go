// Package monitoring turns a simulation into an inspectable web server. The
// endpoints are read-only views of the manager state, intended for looking
// at a simulation between batch runs.
package monitoring

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/vmsim/vm"
)

// A Monitor serves the state of a Manager over HTTP.
type Monitor struct {
	manager    *vm.Manager
	portNumber int
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port of the monitor. Ports below 1000 are not
// allowed and fall back to a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the monitoring server. "+
				"Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterManager registers the manager to be monitored.
func (m *Monitor) RegisterManager(manager *vm.Manager) {
	m.manager = manager
}

// StartServer starts the monitor and returns its URL.
func (m *Monitor) StartServer() string {
	r := mux.NewRouter()

	r.HandleFunc("/api/info", m.describe)
	r.HandleFunc("/api/frames", m.listFrames)
	r.HandleFunc("/api/segments", m.listSegments)
	r.HandleFunc("/api/allocations", m.listAllocations)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/state", m.serializeState)
	r.HandleFunc("/api/state/{field}", m.serializeStateField)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		dieOnErr(http.Serve(listener, r))
	}()

	return url
}

type infoRsp struct {
	Name            string `json:"name"`
	WordsPerFrame   int    `json:"words_per_frame"`
	PagesPerSegment int    `json:"pages_per_segment"`
	FrameCount      int    `json:"frame_count"`
	MemoryWords     int    `json:"memory_words"`
	BlockCount      int    `json:"block_count"`
}

func (m *Monitor) describe(w http.ResponseWriter, _ *http.Request) {
	mem := m.manager.Memory()

	m.writeJSON(w, infoRsp{
		Name:            m.manager.Name(),
		WordsPerFrame:   m.manager.WordsPerFrame(),
		PagesPerSegment: m.manager.PagesPerSegment(),
		FrameCount:      mem.FrameCount(),
		MemoryWords:     mem.FrameCount() * mem.WordsPerFrame(),
		BlockCount:      m.manager.DiskStore().BlockCount(),
	})
}

func (m *Monitor) listFrames(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.manager.FrameStats())
}

func (m *Monitor) listSegments(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.manager.SegmentStats())
}

func (m *Monitor) listAllocations(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.manager.AllocationStats())
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) serializeState(w http.ResponseWriter, _ *http.Request) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.manager)
	serializer.SetMaxDepth(1)

	dieOnErr(serializer.Serialize(w))
}

func (m *Monitor) serializeStateField(w http.ResponseWriter, r *http.Request) {
	fields := strings.Split(mux.Vars(r)["field"], ".")

	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.manager)
	serializer.SetMaxDepth(1)

	if err := serializer.SetEntryPoint(fields); err != nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Field not found: %s", err)
		return
	}

	dieOnErr(serializer.Serialize(w))
}

func (m *Monitor) writeJSON(w http.ResponseWriter, data any) {
	bytes, err := json.Marshal(data)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
