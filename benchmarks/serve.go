package benchmarks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/zeu5/qlearning-nav/graph"
	"github.com/zeu5/qlearning-nav/policies"
	"github.com/zeu5/qlearning-nav/types"
)

type stateInfo struct {
	Name    string   `json:"name"`
	Goal    bool     `json:"goal"`
	Actions []string `json:"actions"`
}

// queryServer answers read-only queries on a trained table
type queryServer struct {
	graph   *graph.Graph
	learner *policies.QLearning
}

// NewRouter serves the states, the table and the greedy policy of learner
func NewRouter(g *graph.Graph, learner *policies.QLearning) *gin.Engine {
	q := &queryServer{
		graph:   g,
		learner: learner,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/healthz", healthHandler)
	r.GET("/states", q.handleStates)
	r.GET("/qtable", q.handleTable)
	r.GET("/qtable/:state", q.handleRow)
	r.GET("/policy", q.handlePolicy)
	return r
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (q *queryServer) names(states []types.State) []string {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = q.graph.Name(s)
	}
	return names
}

func (q *queryServer) handleStates(c *gin.Context) {
	states := make([]stateInfo, 0, q.graph.NumStates())
	for _, s := range q.graph.States() {
		states = append(states, stateInfo{
			Name:    q.graph.Name(s),
			Goal:    s == q.graph.Goal(),
			Actions: q.names(q.graph.Actions(s)),
		})
	}
	c.JSON(http.StatusOK, gin.H{"states": states})
}

func (q *queryServer) handleTable(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"states": q.names(q.graph.States()),
		"rows":   q.learner.Table().Rows(),
	})
}

func (q *queryServer) handleRow(c *gin.Context) {
	s, ok := q.graph.State(c.Param("state"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown state"})
		return
	}
	values := make(map[string]float64)
	for _, a := range q.graph.Actions(s) {
		values[q.graph.Name(a)] = q.learner.Table().Get(s, a)
	}
	c.JSON(http.StatusOK, gin.H{
		"state":  q.graph.Name(s),
		"row":    q.learner.Table().Row(s),
		"values": values,
		"greedy": q.graph.Name(q.learner.Greedy(s)),
	})
}

func (q *queryServer) handlePolicy(c *gin.Context) {
	policy := make(map[string]string)
	for i, to := range q.learner.Policy() {
		policy[q.graph.Name(types.State(i))] = q.graph.Name(to)
	}
	c.JSON(http.StatusOK, gin.H{"policy": policy})
}

// serveUntilDone serves until ctx is cancelled and the server shut down
func serveUntilDone(ctx context.Context, server *http.Server) error {
	go func() {
		<-ctx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			log.Printf("warning: shutting down the server: %v", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func ServeCommand() *cobra.Command {
	var port int
	var workers int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Learn the table once and serve it over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadEnvironment()
			if err != nil {
				return err
			}
			ctx, done := interruptContext()
			defer done()

			learner, stats, err := Train(ctx, g, workers)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), FormatStats(stats))

			server := &http.Server{
				Addr:    fmt.Sprintf("localhost:%d", port),
				Handler: NewRouter(g, learner),
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s\n", server.Addr)
			return serveUntilDone(ctx, server)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to serve on")
	cmd.Flags().IntVar(&workers, "workers", 1, "Number of agents training in parallel")
	return cmd
}
