package traceview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/boxstack/datarecording"
	"github.com/sarchlab/boxstack/tracing"
)

func writeTrace(path string) {
	recorder, err := datarecording.New(path)
	Expect(err).NotTo(HaveOccurred())

	Expect(recorder.CreateTable(tracing.TickTable, tracing.TickEntry{})).To(Succeed())
	Expect(recorder.CreateTable(tracing.ActionTable, tracing.ActionEntry{})).To(Succeed())
	Expect(recorder.CreateTable(tracing.HaltTable, tracing.HaltEntry{})).To(Succeed())
	Expect(recorder.CreateTable(datarecording.ExecTable, datarecording.ExecInfo{})).To(Succeed())

	for tick := 0; tick < 5; tick++ {
		Expect(recorder.InsertData(tracing.TickTable,
			tracing.TickEntry{Tick: tick, BoxesOnGrid: 4})).To(Succeed())

		for robot := 0; robot < 2; robot++ {
			action := "move"
			if robot == 1 && tick == 3 {
				action = "pickup"
			}

			Expect(recorder.InsertData(tracing.ActionTable, tracing.ActionEntry{
				Tick: tick, Robot: robot, Action: action, X: tick, Y: robot,
			})).To(Succeed())
		}
	}

	Expect(recorder.InsertData(tracing.HaltTable,
		tracing.HaltEntry{Reason: "iteration_cap", Ticks: 5})).To(Succeed())
	Expect(recorder.InsertData(datarecording.ExecTable,
		datarecording.ExecInfo{Property: "Policy", Value: "center"})).To(Succeed())
	Expect(recorder.Close()).To(Succeed())
}

var _ = Describe("Server", func() {
	var (
		reader datarecording.DataReader
		router http.Handler
	)

	get := func(url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

		return rec
	}

	decodePage := func(rec *httptest.ResponseRecorder) (int, []map[string]any) {
		var p struct {
			Total int              `json:"total"`
			Rows  []map[string]any `json:"rows"`
		}

		Expect(json.Unmarshal(rec.Body.Bytes(), &p)).To(Succeed())

		return p.Total, p.Rows
	}

	BeforeEach(func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")
		writeTrace(path)

		var err error
		reader, err = datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())

		router = NewServer(reader).Router()
	})

	AfterEach(func() {
		Expect(reader.Close()).To(Succeed())
	})

	It("should serve the run information", func() {
		rec := get("/api/info")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"Policy":"center"`))
	})

	It("should serve the halt", func() {
		rec := get("/api/halt")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"reason":"iteration_cap"`))
	})

	It("should serve a tick range", func() {
		total, rows := decodePage(get("/api/ticks?start=1&end=3"))

		Expect(total).To(Equal(3))
		Expect(rows).To(HaveLen(3))
		Expect(rows[0]["tick"]).To(BeNumerically("==", 1))
	})

	It("should page through actions", func() {
		total, rows := decodePage(get("/api/actions?limit=4&offset=2"))

		Expect(total).To(Equal(10))
		Expect(rows).To(HaveLen(4))
		Expect(rows[0]["tick"]).To(BeNumerically("==", 1))
	})

	It("should filter actions by robot and action", func() {
		total, rows := decodePage(get("/api/actions?robot=1&action=pickup"))

		Expect(total).To(Equal(1))
		Expect(rows[0]["tick"]).To(BeNumerically("==", 3))
		Expect(rows[0]["x"]).To(BeNumerically("==", 3))
	})

	It("should reject malformed queries", func() {
		Expect(get("/api/ticks?start=x").Code).To(Equal(http.StatusBadRequest))
		Expect(get("/api/ticks?start=-1").Code).To(Equal(http.StatusBadRequest))
		Expect(get("/api/actions?robot=r2").Code).To(Equal(http.StatusBadRequest))
	})
})
