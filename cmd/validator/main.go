// Command validator runs the HTTP service that fronts the aggregation
// core: miners submit responses over HTTP, the service feeds them
// through replay/rate-limit protection, and an aggregation pass runs
// per statement on demand.
//
// Grounded on the teacher's services/validator/main.go entry point and
// its CORS-enabled gin router.
package main

import (
	"database/sql"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"

	"github.com/veritas-net/validator-core/internal/aggregator"
	"github.com/veritas-net/validator-core/internal/ingest"
	"github.com/veritas-net/validator-core/internal/netview"
	"github.com/veritas-net/validator-core/internal/prng"
	"github.com/veritas-net/validator-core/internal/types"
)

// server holds the process-wide dependencies the HTTP handlers close
// over: the aggregator (one per process, per spec.md §3 lifecycle),
// the intake gate, and a per-statement response buffer awaiting an
// aggregation pass.
type server struct {
	agg    *aggregator.Aggregator
	intake *ingest.Intake
	view   types.NetworkView
	db     *sql.DB

	mu      sync.Mutex
	pending map[types.Statement][]types.MinerResponse
}

func main() {
	cfg := loadConfig()

	var view types.NetworkView
	dgraphView, err := netview.DialDgraph(cfg.DgraphAddr, true, true)
	if err != nil {
		log.Printf("validator: dgraph unavailable (%v), falling back to an empty static view", err)
		view = netview.NewStatic(nil, nil, 0)
	} else {
		defer dgraphView.Close()
		view = dgraphView
	}

	var db *sql.DB
	if cfg.MySQLDSN != "" {
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("validator: open mysql: %v", err)
		}
		defer db.Close()
	}

	srv := &server{
		agg:     aggregator.New(types.DefaultScorerConfig(), prng.NewDefault(time.Now().UnixNano())),
		intake:  ingest.NewIntake(cfg.ReplayRetention, cfg.RateLimit, cfg.RateWindow),
		view:    view,
		db:      db,
		pending: make(map[types.Statement][]types.MinerResponse),
	}
	srv.agg.OnTierSelected = func(e aggregator.TierEvent) {
		log.Printf("validator: statement %q resolved via %s tier", e.Statement, e.Tier)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost},
		AllowHeaders:    []string{"Origin", "Content-Type"},
	}))

	router.POST("/statements/:statement/responses", srv.submitResponse)
	router.POST("/statements/:statement/calculate", srv.calculate)
	router.GET("/miners/scores", srv.minerScores)

	log.Printf("validator: listening on %s", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("validator: serve: %v", err)
	}
}

type submitRequest struct {
	MinerUID   uint64   `json:"miner_uid" binding:"required"`
	Resolution string   `json:"resolution" binding:"required"`
	Confidence float64  `json:"confidence"`
	Summary    string   `json:"summary"`
	Sources    []string `json:"sources"`
}

func (s *server) submitResponse(c *gin.Context) {
	statement := types.Statement(c.Param("statement"))

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response := types.MinerResponse{
		MinerUID:   &req.MinerUID,
		Resolution: types.Resolution(req.Resolution),
		Confidence: req.Confidence,
		Summary:    req.Summary,
		Sources:    req.Sources,
	}

	if !s.intake.Accept(statement, response, time.Now()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rejected by intake (invalid, rate-limited, or replayed)"})
		return
	}

	s.mu.Lock()
	s.pending[statement] = append(s.pending[statement], response)
	s.mu.Unlock()

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (s *server) calculate(c *gin.Context) {
	statement := types.Statement(c.Param("statement"))

	s.mu.Lock()
	responses := s.pending[statement]
	delete(s.pending, statement)
	s.mu.Unlock()

	result := s.agg.Calculate(statement, responses, s.view)

	if s.db != nil {
		if err := s.persist(statement, result); err != nil {
			log.Printf("validator: persist result for %q: %v", statement, err)
		}
	}

	c.JSON(http.StatusOK, result)
}

func (s *server) minerScores(c *gin.Context) {
	c.JSON(http.StatusOK, s.agg.MinerScores())
}

// persist mirrors one ValidationResult into MySQL, the teacher's
// persistence choice for durable records outside the pure core.
func (s *server) persist(statement types.Statement, result types.ValidationResult) error {
	_, err := s.db.Exec(
		`INSERT INTO validation_results (statement, resolution, confidence, total_responses, valid_responses) VALUES (?, ?, ?, ?, ?)`,
		string(statement), string(result.ConsensusResolution), result.ConsensusConfidence, result.TotalResponses, result.ValidResponses,
	)
	return err
}
