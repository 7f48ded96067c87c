// Package monitoring turns a running simulation into a web server, so that
// its state can be inspected and the run can be paused.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/icnt3d/monitoring/web"
	"github.com/sarchlab/icnt3d/sim"
)

// Simulation is the run that the monitor controls.
type Simulation interface {
	sim.Named
	Now() sim.VTimeInCycle
	Busy() bool
	DisplayState(w io.Writer)
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	simulation  Simulation
	components  []sim.Named
	buffers     []sim.Buffer
	portNumber  int
	openBrowser bool
	idGen       sim.IDGenerator

	// lock is held while the simulation advances a cycle. Handlers that read
	// simulation state take it, too.
	lock   sync.Mutex
	resume *sync.Cond
	paused bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	m := &Monitor{
		idGen: sim.NewSequentialIDGenerator("ProgressBar"),
	}
	m.resume = sync.NewCond(&m.lock)

	return m
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes the monitor open its page in a browser once the server
// is up.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterSimulation registers the run that is monitored.
func (m *Monitor) RegisterSimulation(s Simulation) {
	m.simulation = s
}

// RegisterComponent registers a component whose fields can be inspected.
func (m *Monitor) RegisterComponent(c sim.Named) {
	m.components = append(m.components, c)
}

// RegisterBuffer registers a buffer that the hang detector watches.
func (m *Monitor) RegisterBuffer(b sim.Buffer) {
	m.buffers = append(m.buffers, b)
}

// Advance runs one step of the simulation. It blocks while the simulation
// is paused.
func (m *Monitor) Advance(step func()) {
	m.lock.Lock()
	defer m.lock.Unlock()

	for m.paused {
		m.resume.Wait()
	}

	step()
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		id:        m.idGen.Generate(),
		name:      name,
		startTime: time.Now(),
		total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/continue", m.continueRun)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/state", m.state)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/hangdetector/buffers", m.hangDetectorBuffers)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server with a custom port if wanted.
func (m *Monitor) StartServer() {
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
		err := http.Serve(listener, m.handler())
		dieOnErr(err)
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %s\n", err)
		}
	}
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	m.paused = true
	m.lock.Unlock()

	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueRun(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	m.paused = false
	m.resume.Broadcast()
	m.lock.Unlock()

	_, err := w.Write(nil)
	dieOnErr(err)
}

type nowRsp struct {
	Name   string `json:"name"`
	Now    uint64 `json:"now"`
	Busy   bool   `json:"busy"`
	Paused bool   `json:"paused"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	if !m.simulationOr404(w) {
		return
	}

	m.lock.Lock()
	rsp := nowRsp{
		Name:   m.simulation.Name(),
		Now:    uint64(m.simulation.Now()),
		Busy:   m.simulation.Busy(),
		Paused: m.paused,
	}
	m.lock.Unlock()

	writeJSON(w, rsp)
}

func (m *Monitor) state(w http.ResponseWriter, _ *http.Request) {
	if !m.simulationOr404(w) {
		return
	}

	var buf bytes.Buffer

	m.lock.Lock()
	m.simulation.DisplayState(&buf)
	m.lock.Unlock()

	w.Header().Set("Content-Type", "text/plain")
	_, err := w.Write(buf.Bytes())
	dieOnErr(err)
}

func (m *Monitor) simulationOr404(w http.ResponseWriter) bool {
	if m.simulation != nil {
		return true
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("No simulation registered"))
	dieOnErr(err)

	return false
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	fields := strings.Split(req.FieldName, ".")

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(fields)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type bufferRsp struct {
	Buffer string `json:"buffer"`
	Level  int    `json:"level"`
	Cap    int    `json:"cap"`
}

func (m *Monitor) hangDetectorBuffers(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := m.buffersParseParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	m.lock.Lock()
	sortedBuffers := m.sortAndSelectBuffers(sortMethod, limit, offset)

	rsp := make([]bufferRsp, 0, len(sortedBuffers))
	for _, b := range sortedBuffers {
		rsp = append(rsp, bufferRsp{
			Buffer: b.Name(),
			Level:  b.Size(),
			Cap:    b.Capacity(),
		})
	}
	m.lock.Unlock()

	writeJSON(w, rsp)
}

func (*Monitor) buffersParseParams(
	r *http.Request,
) (sort string, limit, offset int, err error) {
	sortMethod := r.URL.Query().Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}

	if sortMethod != "level" && sortMethod != "percent" {
		errStr := fmt.Sprintf(
			"Invalid sort method: %s. Allowed values are `level` and `percent`",
			sortMethod)
		return "", 0, 0, errors.New(errStr)
	}

	limitNumber, err := intParam(r, "limit")
	if err != nil {
		return sortMethod, 0, 0, err
	}

	offsetNumber, err := intParam(r, "offset")
	if err != nil {
		return sortMethod, limitNumber, 0, err
	}

	return sortMethod, limitNumber, offsetNumber, nil
}

func intParam(r *http.Request, name string) (int, error) {
	str := r.URL.Query().Get(name)
	if str == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(str)
	if err != nil {
		return 0, err
	}

	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}

	return n, nil
}

func bufferPercent(b sim.Buffer) float64 {
	return float64(b.Size()) / float64(b.Capacity())
}

// sortAndSelectBuffers returns limit buffers after skipping offset, the
// fullest first. A limit of 0 returns all the remaining buffers.
func (m *Monitor) sortAndSelectBuffers(
	sortMethod string,
	limit, offset int,
) []sim.Buffer {
	sortedBuffers := make([]sim.Buffer, len(m.buffers))
	copy(sortedBuffers, m.buffers)

	switch sortMethod {
	case "level":
		sort.SliceStable(sortedBuffers, func(i, j int) bool {
			sizeI := sortedBuffers[i].Size()
			sizeJ := sortedBuffers[j].Size()

			if sizeI != sizeJ {
				return sizeI > sizeJ
			}

			return bufferPercent(sortedBuffers[i]) > bufferPercent(sortedBuffers[j])
		})
	case "percent":
		sort.SliceStable(sortedBuffers, func(i, j int) bool {
			percentI := bufferPercent(sortedBuffers[i])
			percentJ := bufferPercent(sortedBuffers[j])

			if percentI != percentJ {
				return percentI > percentJ
			}

			return sortedBuffers[i].Size() > sortedBuffers[j].Size()
		})
	default:
		panic("Invalid sort method " + sortMethod)
	}

	if offset > len(sortedBuffers) {
		offset = len(sortedBuffers)
	}

	end := len(sortedBuffers)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return sortedBuffers[offset:end]
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) sim.Named {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Component not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	rsp := make([]progressRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		rsp = append(rsp, b.snapshot())
	}

	writeJSON(w, rsp)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
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
