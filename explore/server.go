// Package explore serves generated memories over HTTP, so tiling plans and
// emitted Verilog can be inspected from a browser while iterating on a
// configuration.
package explore

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"

	"github.com/memtile/memtile/memgen"
	"github.com/memtile/memtile/plan"
)

// Server exposes registered memories for external inspection.
type Server struct {
	portNumber  int
	openBrowser bool

	mu       sync.Mutex
	memories []*memgen.Memory
}

// NewServer creates an empty exploration server.
func NewServer() *Server {
	return &Server{}
}

// WithPortNumber sets the port to listen on. Ports below 1000 are not
// allowed and fall back to a random port.
func (s *Server) WithPortNumber(portNumber int) *Server {
	if portNumber > 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the exploration server. "+
				"Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	s.portNumber = portNumber

	return s
}

// WithBrowser opens the served URL in the local browser on start.
func (s *Server) WithBrowser() *Server {
	s.openBrowser = true
	return s
}

// Register adds a generated memory to be served.
func (s *Server) Register(mem *memgen.Memory) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memories = append(s.memories, mem)
}

// StartServer starts listening in the background and returns the bound
// address.
func (s *Server) StartServer() (string, error) {
	r := mux.NewRouter()
	r.HandleFunc("/api/memories", s.listMemories)
	r.HandleFunc("/api/memory/{name}", s.memoryDetails)
	r.HandleFunc("/api/memory/{name}/verilog", s.memoryVerilog)
	r.HandleFunc("/api/memory/{name}/module/{module}", s.moduleText)

	actualPort := ":0"
	if s.portNumber > 0 {
		actualPort = ":" + strconv.Itoa(s.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", fmt.Errorf("explore server: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Exploring memories with %s\n", url)

	go func() {
		if err := http.Serve(listener, r); err != nil {
			fmt.Fprintf(os.Stderr, "explore server: %s\n", err)
		}
	}()

	if s.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "cannot open browser: %s\n", err)
		}
	}

	return url, nil
}

type memorySummary struct {
	Name    string `json:"name"`
	Bits    int    `json:"bits"`
	LineNum int    `json:"lineNum"`
	BankNum int    `json:"bankNum"`
	RowNum  int    `json:"rowNum"`
	Macro   string `json:"macro,omitempty"`
}

func (s *Server) listMemories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]memorySummary, 0, len(s.memories))
	for _, mem := range s.memories {
		sum := memorySummary{
			Name:    mem.TopName,
			Bits:    mem.Plan.Bits,
			LineNum: mem.Plan.LineNum,
			BankNum: mem.Plan.Tiling.BankNum,
			RowNum:  mem.Plan.Tiling.RowNum,
		}
		if mem.Plan.Macro != nil {
			sum.Macro = mem.Plan.Macro.Name
		}

		summaries = append(summaries, sum)
	}

	writeJSON(w, summaries)
}

type memoryDetails struct {
	Name        string            `json:"name"`
	Plan        *plan.Plan        `json:"plan"`
	Diagnostics []plan.Diagnostic `json:"diagnostics,omitempty"`
	Modules     []string          `json:"modules"`
	ReadLatency int               `json:"readLatency"`
}

func (s *Server) memoryDetails(w http.ResponseWriter, r *http.Request) {
	mem := s.findMemoryOr404(w, mux.Vars(r)["name"])
	if mem == nil {
		return
	}

	details := memoryDetails{
		Name:        mem.TopName,
		Plan:        mem.Plan,
		Diagnostics: mem.Diagnostics,
		ReadLatency: mem.Plan.ReadLatency(),
	}
	for _, mod := range mem.Modules {
		details.Modules = append(details.Modules, mod.Name())
	}

	writeJSON(w, details)
}

func (s *Server) memoryVerilog(w http.ResponseWriter, r *http.Request) {
	mem := s.findMemoryOr404(w, mux.Vars(r)["name"])
	if mem == nil {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, mem.Render())
}

func (s *Server) moduleText(w http.ResponseWriter, r *http.Request) {
	mem := s.findMemoryOr404(w, mux.Vars(r)["name"])
	if mem == nil {
		return
	}

	mod := mem.Module(mux.Vars(r)["module"])
	if mod == nil {
		http.Error(w, "module not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, mod.Render())
}

func (s *Server) findMemoryOr404(
	w http.ResponseWriter,
	name string,
) *memgen.Memory {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, mem := range s.memories {
		if mem.TopName == name {
			return mem
		}
	}

	http.Error(w, "memory not found", http.StatusNotFound)

	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
