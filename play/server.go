package play

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/zeu5/tictactoe-rl/policies"
	"github.com/zeu5/tictactoe-rl/tictactoe"
)

type newGameRequest struct {
	HumanFirst bool `json:"human_first"`
}

type moveRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

type gameView struct {
	ID        string               `json:"id"`
	Board     tictactoe.Board      `json:"board"`
	Available []tictactoe.Position `json:"available"`
	YourTurn  bool                 `json:"your_turn"`
	Over      bool                 `json:"over"`
	Winner    tictactoe.Mark       `json:"winner,omitempty"`
	Draw      bool                 `json:"draw,omitempty"`
	AIMove    *tictactoe.Position  `json:"ai_move,omitempty"`
}

// Server lets humans play the AI over HTTP. Every game gets its own agent,
// all agents learn into the same value table. Requests are served under a
// single lock. A game is dropped once its final state has been returned.
type Server struct {
	Port   int
	ctx    context.Context
	server *http.Server

	lock        *sync.Mutex
	table       *policies.ValueTable
	agentConfig policies.TDAgentConfig
	games       map[string]*Game
	nextID      int
	finished    int
}

func NewServer(ctx context.Context, port int, table *policies.ValueTable, agentConfig policies.TDAgentConfig) *Server {
	s := &Server{
		Port:        port,
		ctx:         ctx,
		lock:        new(sync.Mutex),
		table:       table,
		agentConfig: agentConfig,
		games:       make(map[string]*Game),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.POST("/games", s.handleNewGame)
	r.GET("/games/:id", s.handleGetGame)
	r.POST("/games/:id/moves", s.handleMove)
	r.GET("/stats", s.handleStats)
	s.server = &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", port),
		Handler: r,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until the context is cancelled
func (s *Server) Start() error {
	go func() {
		<-s.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}()

	glog.Infof("play server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) view(id string, g *Game, aiMove *tictactoe.Position) gameView {
	v := gameView{
		ID:        id,
		Board:     g.Board(),
		Available: g.Available(),
		YourTurn:  g.HumanTurn(),
		Over:      g.Over(),
		AIMove:    aiMove,
	}
	if outcome, ok := g.Outcome(); ok {
		v.Winner = outcome.Winner
		v.Draw = outcome.Draw
	}
	return v
}

func (s *Server) handleNewGame(c *gin.Context) {
	req := newGameRequest{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
			return
		}
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.nextID++
	id := strconv.Itoa(s.nextID)
	ai := policies.NewTDAgent(tictactoe.PlayerA, s.table, s.agentConfig)
	g := NewGame(ai, req.HumanFirst)
	s.games[id] = g

	var aiMove *tictactoe.Position
	if !req.HumanFirst {
		pos, err := g.AIMove()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		aiMove = &pos
	}
	c.JSON(http.StatusCreated, s.view(id, g, aiMove))
}

func (s *Server) handleGetGame(c *gin.Context) {
	id := c.Param("id")

	s.lock.Lock()
	defer s.lock.Unlock()

	g, ok := s.games[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown game"})
		return
	}
	c.JSON(http.StatusOK, s.view(id, g, nil))
}

func (s *Server) handleMove(c *gin.Context) {
	id := c.Param("id")
	req := moveRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	g, ok := s.games[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown game"})
		return
	}
	pos := tictactoe.Position{Row: *req.Row, Col: *req.Col}
	if err := g.HumanMove(pos); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrGameOver) || errors.Is(err, ErrNotYourTurn) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	var aiMove *tictactoe.Position
	if !g.Over() {
		pos, err := g.AIMove()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		aiMove = &pos
	}
	c.JSON(http.StatusOK, s.view(id, g, aiMove))
	if g.Over() {
		delete(s.games, id)
		s.finished++
	}
}

func (s *Server) handleStats(c *gin.Context) {
	s.lock.Lock()
	defer s.lock.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"states":   s.table.Len(),
		"games":    len(s.games),
		"finished": s.finished,
	})
}
