package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stellarlinkco/hotpot-eval/internal/scoring"
)

type scoreRequest struct {
	Prediction  string `json:"prediction"`
	GroundTruth string `json:"ground_truth"`
}

type scoreResponse struct {
	ExactMatch bool    `json:"exact_match"`
	F1         float64 `json:"f1"`
	Precision  float64 `json:"precision"`
	Recall     float64 `json:"recall"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	f1, precision, recall := scoring.F1(req.Prediction, req.GroundTruth)
	c.JSON(http.StatusOK, scoreResponse{
		ExactMatch: scoring.ExactMatch(req.Prediction, req.GroundTruth),
		F1:         f1,
		Precision:  precision,
		Recall:     recall,
	})
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s == nil || s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history not configured"})
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	runs, err := s.store.List(c.Request.Context(), c.Query("dataset"), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	out := make([]gin.H, 0, len(runs))
	for _, r := range runs {
		out = append(out, gin.H{
			"id":          r.ID,
			"dataset":     r.Dataset,
			"model":       r.Model,
			"queries":     r.Queries,
			"exact_match": r.ExactMatch,
			"f1":          r.F1,
			"eval_date":   r.EvalDate.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

func respondError(c *gin.Context, status int, err error) {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}
