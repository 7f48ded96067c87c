package monitoring

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/icnt3d/sim"
)

type fakeSimulation struct {
	now  sim.VTimeInCycle
	busy bool
}

func (s *fakeSimulation) Name() string { return "ICNT" }

func (s *fakeSimulation) Now() sim.VTimeInCycle { return s.now }

func (s *fakeSimulation) Busy() bool { return s.busy }

func (s *fakeSimulation) DisplayState(w io.Writer) {
	fmt.Fprintf(w, "ICNT state at cycle %d\n", s.now)
}

type sampleComponent struct {
	Count int
	Label string
}

func (c *sampleComponent) Name() string { return "Comp" }

func fillBuffer(name string, capacity, n int) sim.Buffer {
	b := sim.NewBuffer(name, capacity)
	for i := 0; i < n; i++ {
		b.Push(i)
	}

	return b
}

var _ = Describe("Monitor", func() {
	var (
		m          *Monitor
		simulation *fakeSimulation
		server     *httptest.Server
	)

	get := func(path string) (int, []byte) {
		rsp, err := http.Get(server.URL + path)
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		Expect(err).ToNot(HaveOccurred())

		return rsp.StatusCode, body
	}

	BeforeEach(func() {
		simulation = &fakeSimulation{now: 42, busy: true}

		m = NewMonitor()
		m.RegisterSimulation(simulation)
		m.RegisterComponent(&sampleComponent{Count: 3, Label: "a"})

		server = httptest.NewServer(m.handler())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should report the current cycle", func() {
		code, body := get("/api/now")

		Expect(code).To(Equal(http.StatusOK))

		rsp := nowRsp{}
		Expect(json.Unmarshal(body, &rsp)).To(Succeed())
		Expect(rsp).To(Equal(nowRsp{
			Name:   "ICNT",
			Now:    42,
			Busy:   true,
			Paused: false,
		}))
	})

	It("should dump the simulation state", func() {
		code, body := get("/api/state")

		Expect(code).To(Equal(http.StatusOK))
		Expect(string(body)).To(Equal("ICNT state at cycle 42\n"))
	})

	It("should return 404 without a simulation", func() {
		m.simulation = nil

		code, _ := get("/api/now")

		Expect(code).To(Equal(http.StatusNotFound))
	})

	It("should hold Advance while paused", func() {
		code, _ := get("/api/pause")
		Expect(code).To(Equal(http.StatusOK))

		stepped := make(chan struct{})
		go func() {
			m.Advance(func() { simulation.now++ })
			close(stepped)
		}()

		Consistently(stepped, 50*time.Millisecond).ShouldNot(BeClosed())

		code, _ = get("/api/continue")
		Expect(code).To(Equal(http.StatusOK))

		Eventually(stepped, time.Second).Should(BeClosed())
		Expect(simulation.now).To(Equal(sim.VTimeInCycle(43)))
	})

	It("should list components", func() {
		code, body := get("/api/list_components")

		Expect(code).To(Equal(http.StatusOK))

		names := []string{}
		Expect(json.Unmarshal(body, &names)).To(Succeed())
		Expect(names).To(Equal([]string{"Comp"}))
	})

	It("should serialize a component", func() {
		code, body := get("/api/component/Comp")

		Expect(code).To(Equal(http.StatusOK))
		Expect(body).ToNot(BeEmpty())
	})

	It("should return 404 for unknown components", func() {
		code, _ := get("/api/component/Unknown")

		Expect(code).To(Equal(http.StatusNotFound))
	})

	It("should reject malformed field requests", func() {
		code, _ := get("/api/field/" + url.PathEscape("{not json"))

		Expect(code).To(Equal(http.StatusBadRequest))
	})

	Context("when detecting hangs", func() {
		BeforeEach(func() {
			m.RegisterBuffer(fillBuffer("A", 4, 1))
			m.RegisterBuffer(fillBuffer("B", 2, 2))
			m.RegisterBuffer(fillBuffer("C", 8, 3))
		})

		query := func(params string) []bufferRsp {
			code, body := get("/api/hangdetector/buffers" + params)
			Expect(code).To(Equal(http.StatusOK))

			rsp := []bufferRsp{}
			Expect(json.Unmarshal(body, &rsp)).To(Succeed())

			return rsp
		}

		names := func(rsp []bufferRsp) []string {
			out := []string{}
			for _, b := range rsp {
				out = append(out, b.Buffer)
			}

			return out
		}

		It("should sort by percent by default and return all", func() {
			rsp := query("")

			Expect(names(rsp)).To(Equal([]string{"B", "C", "A"}))
			Expect(rsp[0]).To(Equal(bufferRsp{Buffer: "B", Level: 2, Cap: 2}))
		})

		It("should sort by level", func() {
			Expect(names(query("?sort=level"))).
				To(Equal([]string{"C", "B", "A"}))
		})

		It("should apply limit and offset", func() {
			Expect(names(query("?sort=level&limit=1&offset=1"))).
				To(Equal([]string{"B"}))
			Expect(names(query("?offset=5"))).To(BeEmpty())
		})

		It("should reject unknown sort methods", func() {
			code, _ := get("/api/hangdetector/buffers?sort=name")

			Expect(code).To(Equal(http.StatusBadRequest))
		})

		It("should reject negative limits", func() {
			code, _ := get("/api/hangdetector/buffers?limit=-1")

			Expect(code).To(Equal(http.StatusBadRequest))
		})
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("Packets", 10)
		bar.SetProgress(3, 1)
		Expect(bar.Total()).To(Equal(uint64(10)))

		code, body := get("/api/progress")
		Expect(code).To(Equal(http.StatusOK))

		bars := []map[string]any{}
		Expect(json.Unmarshal(body, &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["name"]).To(Equal("Packets"))
		Expect(bars[0]["finished"]).To(BeNumerically("==", 3))
		Expect(bars[0]["in_progress"]).To(BeNumerically("==", 1))

		m.CompleteProgressBar(bar)

		_, body = get("/api/progress")
		Expect(json.Unmarshal(body, &bars)).To(Succeed())
		Expect(bars).To(BeEmpty())
	})

	It("should serve progress while the simulation updates it", func() {
		bar := m.CreateProgressBar("Packets", 1000)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := uint64(0); i < 1000; i++ {
				bar.SetProgress(i, 1000-i)
			}
		}()

		for i := 0; i < 5; i++ {
			code, _ := get("/api/progress")
			Expect(code).To(Equal(http.StatusOK))
		}

		Eventually(done, time.Second).Should(BeClosed())

		_, body := get("/api/progress")
		bars := []map[string]any{}
		Expect(json.Unmarshal(body, &bars)).To(Succeed())
		Expect(bars[0]["finished"]).To(BeNumerically("==", 999))
		Expect(bars[0]["in_progress"]).To(BeNumerically("==", 1))
	})

	It("should serve the index page", func() {
		code, body := get("/")

		Expect(code).To(Equal(http.StatusOK))
		Expect(string(body)).To(HavePrefix("<!DOCTYPE html>"))
	})
})
