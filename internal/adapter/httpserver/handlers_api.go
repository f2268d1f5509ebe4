package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/quikeats/Vouchy/internal/domain"
	apperrors "github.com/quikeats/Vouchy/internal/platform/errors"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

func (s *Server) registerAPIRoutes() {
	s.echo.GET("/api/leaderboard", s.handleLeaderboard)
	s.echo.GET("/api/vouches/:user_id", s.handleUserVouches)
}

func (s *Server) handleLeaderboard(c echo.Context) error {
	limit := defaultLeaderboardLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return apperrors.ValidationError("limit must be a positive integer").WithField("limit", raw)
		}
		limit = min(parsed, maxLeaderboardLimit)
	}

	ranked := domain.Rank(s.ledger.TopN(limit))
	if err := c.JSON(http.StatusOK, ranked); err != nil {
		return fmt.Errorf("failed to write leaderboard response: %w", err)
	}
	return nil
}

func (s *Server) handleUserVouches(c echo.Context) error {
	userID := c.Param("user_id")

	response := domain.Entry{UserID: userID, Points: s.ledger.Get(userID)}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write vouches response: %w", err)
	}
	return nil
}
